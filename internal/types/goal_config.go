package types

import (
	"time"

	"github.com/google/uuid"
)

// GoalConfig is the one live goal per child. Editing it does not rewrite past
// achievements; GoalHistory snapshots threshold and reward at crossing time.
// A threshold of zero or less means no goal is active.
type GoalConfig struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"child_id"`
	Child             *Child    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChildID;references:ID" json:"child,omitempty"`
	GoalThreshold     int64     `gorm:"column:goal_threshold;not null;default:0" json:"goal_threshold"`
	RewardDescription *string   `gorm:"column:reward_description" json:"reward_description,omitempty"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}

func (GoalConfig) TableName() string { return "goal_config" }
