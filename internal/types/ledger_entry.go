package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LedgerReason enumerates why a ledger entry exists.
type LedgerReason string

const (
	ReasonChoreApproved     LedgerReason = "chore_approved"
	ReasonGoalAchievedReset LedgerReason = "goal_achieved_reset"
	ReasonManualAdjustment  LedgerReason = "manual_adjustment"
)

func (r LedgerReason) Valid() bool {
	switch r {
	case ReasonChoreApproved, ReasonGoalAchievedReset, ReasonManualAdjustment:
		return true
	}
	return false
}

// LedgerEntry is an immutable signed point delta. Rows are never updated or
// deleted; the sum of a child's deltas is the authoritative balance. RefID
// points at the originating approval submission for chore_approved rows and
// at the goal history row for goal_achieved_reset rows. The unique
// (child_id, reason, ref_id) index makes a ref'd event creditable exactly
// once even across racing deliveries; rows without a ref stay unconstrained.
type LedgerEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_ledger_child;index:idx_ledger_ref,unique" json:"child_id"`
	Child     *Child         `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChildID;references:ID" json:"child,omitempty"`
	Delta     int64          `gorm:"column:delta;not null" json:"delta"`
	Reason    LedgerReason   `gorm:"column:reason;not null;index:idx_ledger_ref,unique" json:"reason"`
	RefID     *uuid.UUID     `gorm:"type:uuid;column:ref_id;index:idx_ledger_ref,unique" json:"ref_id,omitempty"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index:idx_ledger_child" json:"created_at"`
}

func (LedgerEntry) TableName() string { return "ledger_entry" }
