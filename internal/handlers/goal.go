package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/services"
)

type GoalHandler struct {
	log          *logger.Logger
	goalService  services.GoalService
	childHandler *ChildHandler
}

func NewGoalHandler(log *logger.Logger, goalService services.GoalService, childHandler *ChildHandler) *GoalHandler {
	return &GoalHandler{
		log:          log.With("handler", "GoalHandler"),
		goalService:  goalService,
		childHandler: childHandler,
	}
}

func (h *GoalHandler) Get(c *gin.Context) {
	child, ok := h.childHandler.resolveChild(c)
	if !ok {
		return
	}

	cfg, err := h.goalService.GetConfig(c.Request.Context(), child.ID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_failed", err)
		return
	}
	if cfg == nil {
		RespondOK(c, gin.H{"child_id": child.ID, "goal_threshold": 0})
		return
	}
	RespondOK(c, cfg)
}

type updateGoalRequest struct {
	GoalThreshold     int64   `json:"goal_threshold" binding:"required"`
	RewardDescription *string `json:"reward_description,omitempty"`
}

func (h *GoalHandler) Update(c *gin.Context) {
	child, ok := h.childHandler.resolveChild(c)
	if !ok {
		return
	}

	var req updateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	cfg, err := h.goalService.UpdateConfig(c.Request.Context(), child.ID, req.GoalThreshold, req.RewardDescription)
	if err != nil {
		if errors.Is(err, services.ErrInvalidThreshold) {
			RespondError(c, http.StatusBadRequest, "invalid_threshold", err)
			return
		}
		if cfg != nil {
			c.JSON(http.StatusAccepted, gin.H{"config": cfg, "progression_pending": true})
			return
		}
		RespondError(c, http.StatusInternalServerError, "update_failed", err)
		return
	}
	RespondOK(c, cfg)
}

func (h *GoalHandler) History(c *gin.Context) {
	child, ok := h.childHandler.resolveChild(c)
	if !ok {
		return
	}

	history, err := h.goalService.History(c.Request.Context(), child.ID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_failed", err)
		return
	}
	RespondOK(c, gin.H{"history": history})
}
