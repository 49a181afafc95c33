package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/services"
	"github.com/sproutly/sproutly-backend/internal/types"
)

type LedgerHandler struct {
	log           *logger.Logger
	ledgerService services.LedgerService
	childHandler  *ChildHandler
}

func NewLedgerHandler(log *logger.Logger, ledgerService services.LedgerService, childHandler *ChildHandler) *LedgerHandler {
	return &LedgerHandler{
		log:           log.With("handler", "LedgerHandler"),
		ledgerService: ledgerService,
		childHandler:  childHandler,
	}
}

type appendEntryRequest struct {
	Delta    int64          `json:"delta" binding:"required"`
	Metadata datatypes.JSON `json:"metadata,omitempty"`
}

// Adjust appends a manual adjustment for a child. Chore credits arrive via
// the approval path, not here.
func (h *LedgerHandler) Adjust(c *gin.Context) {
	child, ok := h.childHandler.resolveChild(c)
	if !ok {
		return
	}

	var req appendEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	entry, err := h.ledgerService.Append(c.Request.Context(), child.ID, req.Delta, types.ReasonManualAdjustment, nil, req.Metadata)
	if err != nil {
		if errors.Is(err, services.ErrZeroDelta) {
			RespondError(c, http.StatusBadRequest, "zero_delta", err)
			return
		}
		if entry != nil {
			// The entry landed but the progression step did not finish; the
			// balance will catch up on the next change.
			c.JSON(http.StatusAccepted, gin.H{"entry": entry, "progression_pending": true})
			return
		}
		RespondError(c, http.StatusServiceUnavailable, "append_failed", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

type approvalRequest struct {
	ChildID      uuid.UUID      `json:"child_id" binding:"required"`
	Points       int64          `json:"points" binding:"required"`
	SubmissionID uuid.UUID      `json:"submission_id" binding:"required"`
	Metadata     datatypes.JSON `json:"metadata,omitempty"`
}

// Approve credits an approved chore submission. The same submission may be
// posted more than once; only the first credit applies.
func (h *LedgerHandler) Approve(c *gin.Context) {
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	entry, applied, err := h.ledgerService.RecordApproval(c.Request.Context(), req.ChildID, req.Points, req.SubmissionID, req.Metadata)
	if err != nil {
		if errors.Is(err, services.ErrChildNotFound) {
			RespondError(c, http.StatusNotFound, "child_not_found", err)
			return
		}
		if entry != nil {
			c.JSON(http.StatusAccepted, gin.H{"entry": entry, "progression_pending": true})
			return
		}
		RespondError(c, http.StatusServiceUnavailable, "append_failed", err)
		return
	}
	if !applied {
		RespondOK(c, gin.H{"applied": false})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"applied": true, "entry": entry})
}

func (h *LedgerHandler) Balance(c *gin.Context) {
	child, ok := h.childHandler.resolveChild(c)
	if !ok {
		return
	}

	balance, cached, err := h.ledgerService.Balance(c.Request.Context(), child.ID)
	if err != nil {
		RespondError(c, http.StatusServiceUnavailable, "balance_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"child_id": child.ID, "balance": balance, "cached": cached})
}

func (h *LedgerHandler) Entries(c *gin.Context) {
	child, ok := h.childHandler.resolveChild(c)
	if !ok {
		return
	}

	entries, err := h.ledgerService.Entries(c.Request.Context(), child.ID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"entries": entries})
}
