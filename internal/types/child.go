package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Child is the referential anchor for the ledger relations. Full family
// account management lives in the parent-facing service; this backend only
// needs a stable child identity to key points against.
type Child struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"family_id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Child) TableName() string { return "child" }
