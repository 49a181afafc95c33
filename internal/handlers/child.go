package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/middleware"
	"github.com/sproutly/sproutly-backend/internal/services"
	"github.com/sproutly/sproutly-backend/internal/types"
)

type ChildHandler struct {
	log          *logger.Logger
	childService services.ChildService
}

func NewChildHandler(log *logger.Logger, childService services.ChildService) *ChildHandler {
	return &ChildHandler{
		log:          log.With("handler", "ChildHandler"),
		childService: childService,
	}
}

type createChildRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *ChildHandler) Create(c *gin.Context) {
	var req createChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	child, err := h.childService.Create(c.Request.Context(), middleware.FamilyID(c), req.Name)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, child)
}

func (h *ChildHandler) Get(c *gin.Context) {
	child, ok := h.resolveChild(c)
	if !ok {
		return
	}
	RespondOK(c, child)
}

func (h *ChildHandler) List(c *gin.Context) {
	children, err := h.childService.ListByFamily(c.Request.Context(), middleware.FamilyID(c))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"children": children})
}

// resolveChild parses the :id param, loads the child and enforces that it
// belongs to the caller's family. Shared by the other handlers.
func (h *ChildHandler) resolveChild(c *gin.Context) (*types.Child, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_child_id", err)
		return nil, false
	}

	child, err := h.childService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrChildNotFound) {
			RespondError(c, http.StatusNotFound, "child_not_found", err)
		} else {
			RespondError(c, http.StatusInternalServerError, "load_failed", err)
		}
		return nil, false
	}
	if child.FamilyID != middleware.FamilyID(c) {
		RespondError(c, http.StatusNotFound, "child_not_found", services.ErrChildNotFound)
		return nil, false
	}
	return child, true
}
