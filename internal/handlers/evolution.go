package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/services"
)

type EvolutionHandler struct {
	log              *logger.Logger
	evolutionService services.EvolutionService
	childHandler     *ChildHandler
}

func NewEvolutionHandler(log *logger.Logger, evolutionService services.EvolutionService, childHandler *ChildHandler) *EvolutionHandler {
	return &EvolutionHandler{
		log:              log.With("handler", "EvolutionHandler"),
		evolutionService: evolutionService,
		childHandler:     childHandler,
	}
}

func (h *EvolutionHandler) Overview(c *gin.Context) {
	child, ok := h.childHandler.resolveChild(c)
	if !ok {
		return
	}

	overview, err := h.evolutionService.Overview(c.Request.Context(), child.ID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_failed", err)
		return
	}
	RespondOK(c, overview)
}
