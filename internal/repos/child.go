package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/types"
)

type ChildRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Child) ([]*types.Child, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Child, error)
	GetByFamilyID(ctx context.Context, tx *gorm.DB, familyID uuid.UUID) ([]*types.Child, error)
}

type childRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChildRepo(db *gorm.DB, baseLog *logger.Logger) ChildRepo {
	repoLog := baseLog.With("repo", "ChildRepo")
	return &childRepo{db: db, log: repoLog}
}

func (r *childRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Child) ([]*types.Child, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Child{}, nil
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

func (r *childRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Child, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var row types.Child
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
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

func (r *childRepo) GetByFamilyID(ctx context.Context, tx *gorm.DB, familyID uuid.UUID) ([]*types.Child, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Child
	if familyID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
