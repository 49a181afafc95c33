package types

import (
	"time"

	"github.com/google/uuid"
)

// GoalHistory is the append-only record of achieved goals. The per-child row
// count defines how many goals the child has completed, which drives the
// current evolution slot. It doubles as the idempotency anchor for the
// achievement detector.
type GoalHistory struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID              uuid.UUID `gorm:"type:uuid;not null;index:idx_goal_history_child" json:"child_id"`
	Child                *Child    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChildID;references:ID" json:"child,omitempty"`
	GoalThreshold        int64     `gorm:"column:goal_threshold;not null" json:"goal_threshold"`
	RewardDescription    *string   `gorm:"column:reward_description" json:"reward_description,omitempty"`
	BalanceAtAchievement int64     `gorm:"column:balance_at_achievement;not null" json:"balance_at_achievement"`
	AchievedAt           time.Time `gorm:"column:achieved_at;not null;index:idx_goal_history_child" json:"achieved_at"`
}

func (GoalHistory) TableName() string { return "goal_history" }
