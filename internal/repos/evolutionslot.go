package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/types"
)

type EvolutionSlotRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.EvolutionSlot) ([]*types.EvolutionSlot, error)
	GetByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.EvolutionSlot, error)
	GetByChildAndNumber(ctx context.Context, tx *gorm.DB, childID uuid.UUID, slotNumber int) (*types.EvolutionSlot, error)
	UpdateLevel(ctx context.Context, tx *gorm.DB, id uuid.UUID, level int) error
}

type evolutionSlotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvolutionSlotRepo(db *gorm.DB, baseLog *logger.Logger) EvolutionSlotRepo {
	return &evolutionSlotRepo{
		db:  db,
		log: baseLog.With("repo", "EvolutionSlotRepo"),
	}
}

func (r *evolutionSlotRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.EvolutionSlot) ([]*types.EvolutionSlot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.EvolutionSlot{}, nil
	}

	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *evolutionSlotRepo) GetByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.EvolutionSlot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.EvolutionSlot
	if childID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("slot_number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *evolutionSlotRepo) GetByChildAndNumber(ctx context.Context, tx *gorm.DB, childID uuid.UUID, slotNumber int) (*types.EvolutionSlot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if childID == uuid.Nil || slotNumber < 1 {
		return nil, nil
	}

	var row types.EvolutionSlot
	err := transaction.WithContext(ctx).
		Where("child_id = ? AND slot_number = ?", childID, slotNumber).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *evolutionSlotRepo) UpdateLevel(ctx context.Context, tx *gorm.DB, id uuid.UUID, level int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.EvolutionSlot{}).
		Where("id = ?", id).
		Update("level", level).Error
}
