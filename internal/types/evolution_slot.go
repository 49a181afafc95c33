package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MaxEvolutionSlots caps how many character slots a child ever gets.
	// Past the third completed goal the visuals freeze while the ledger and
	// goal mechanics keep running.
	MaxEvolutionSlots = 3

	MinEvolutionLevel = 1
	MaxEvolutionLevel = 5
)

// EvolutionSlot is derived display state: one of at most three characters per
// child, each with a level 1-5. Levels only ever move up for a given slot.
type EvolutionSlot struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID    uuid.UUID `gorm:"type:uuid;not null;index:idx_slot_child_number,unique" json:"child_id"`
	Child      *Child    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChildID;references:ID" json:"child,omitempty"`
	SlotNumber int       `gorm:"column:slot_number;not null;index:idx_slot_child_number,unique" json:"slot_number"`
	Level      int       `gorm:"column:level;not null;default:1" json:"level"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (EvolutionSlot) TableName() string { return "evolution_slot" }
