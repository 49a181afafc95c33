package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/types"
)

type GoalConfigRepo interface {
	GetByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (*types.GoalConfig, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.GoalConfig) error
}

type goalConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGoalConfigRepo(db *gorm.DB, baseLog *logger.Logger) GoalConfigRepo {
	return &goalConfigRepo{
		db:  db,
		log: baseLog.With("repo", "GoalConfigRepo"),
	}
}

func (r *goalConfigRepo) GetByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (*types.GoalConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if childID == uuid.Nil {
		return nil, nil
	}

	var row types.GoalConfig
	err := transaction.WithContext(ctx).
		Where("child_id = ?", childID).
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

func (r *goalConfigRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.GoalConfig) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil || row.ChildID == uuid.Nil {
		return nil
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	// One live config per child; conflicting writes overwrite in place.
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "child_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"goal_threshold", "reward_description", "updated_at",
			}),
		}).
		Create(row).Error
}
