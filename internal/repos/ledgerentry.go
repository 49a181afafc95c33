package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/types"
)

type LedgerEntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.LedgerEntry) ([]*types.LedgerEntry, error)
	SumForChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (int64, error)
	GetByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.LedgerEntry, error)
	ExistsByRef(ctx context.Context, tx *gorm.DB, childID uuid.UUID, reason types.LedgerReason, refID uuid.UUID) (bool, error)
}

type ledgerEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLedgerEntryRepo(db *gorm.DB, baseLog *logger.Logger) LedgerEntryRepo {
	repoLog := baseLog.With("repo", "LedgerEntryRepo")
	return &ledgerEntryRepo{db: db, log: repoLog}
}

func (r *ledgerEntryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.LedgerEntry) ([]*types.LedgerEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(entries) == 0 {
		return []*types.LedgerEntry{}, nil
	}

	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ledgerEntryRepo) SumForChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if childID == uuid.Nil {
		return 0, nil
	}

	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.LedgerEntry{}).
		Where("child_id = ?", childID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ledgerEntryRepo) GetByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.LedgerEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LedgerEntry
	if childID == uuid.Nil {
		return results, nil
	}

	// Total order: created_at, ties broken by insertion id.
	if err := transaction.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ledgerEntryRepo) ExistsByRef(ctx context.Context, tx *gorm.DB, childID uuid.UUID, reason types.LedgerReason, refID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if childID == uuid.Nil || refID == uuid.Nil {
		return false, nil
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.LedgerEntry{}).
		Where("child_id = ? AND reason = ? AND ref_id = ?", childID, reason, refID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
