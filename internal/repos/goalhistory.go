package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/types"
)

type GoalHistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.GoalHistory) ([]*types.GoalHistory, error)
	GetByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.GoalHistory, error)
	CountForChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (int64, error)
	FindRecentByBalance(ctx context.Context, tx *gorm.DB, childID uuid.UUID, balance int64, since time.Time) (*types.GoalHistory, error)
}

type goalHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGoalHistoryRepo(db *gorm.DB, baseLog *logger.Logger) GoalHistoryRepo {
	repoLog := baseLog.With("repo", "GoalHistoryRepo")
	return &goalHistoryRepo{db: db, log: repoLog}
}

func (r *goalHistoryRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.GoalHistory) ([]*types.GoalHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.GoalHistory{}, nil
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

func (r *goalHistoryRepo) GetByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.GoalHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.GoalHistory
	if childID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("achieved_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *goalHistoryRepo) CountForChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if childID == uuid.Nil {
		return 0, nil
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.GoalHistory{}).
		Where("child_id = ?", childID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *goalHistoryRepo) FindRecentByBalance(ctx context.Context, tx *gorm.DB, childID uuid.UUID, balance int64, since time.Time) (*types.GoalHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if childID == uuid.Nil {
		return nil, nil
	}

	var row types.GoalHistory
	err := transaction.WithContext(ctx).
		Where("child_id = ? AND balance_at_achievement = ? AND achieved_at >= ?", childID, balance, since).
		Order("achieved_at DESC").
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
