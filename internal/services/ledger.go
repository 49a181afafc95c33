package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/repos"
	"github.com/sproutly/sproutly-backend/internal/types"
)

// BalanceCache is a read-through, TTL-bounded view of a child's balance. It
// exists for display reads only; it is never written back as authoritative
// state, and every decision the progression logic makes goes through the
// ledger sum directly.
type BalanceCache interface {
	Get(ctx context.Context, childID uuid.UUID) (int64, bool, error)
	Set(ctx context.Context, childID uuid.UUID, balance int64) error
	Invalidate(ctx context.Context, childID uuid.UUID) error
}

// LedgerService is the append-only store of signed point deltas plus the
// balance projection over it.
type LedgerService interface {
	// Append persists one immutable entry and then runs the progression
	// sequence. The entry is durable even when the progression step returns
	// an error; callers retry by triggering another change for the child.
	Append(ctx context.Context, childID uuid.UUID, delta int64, reason types.LedgerReason, refID *uuid.UUID, metadata datatypes.JSON) (*types.LedgerEntry, error)
	// RecordApproval credits an approved chore submission. Replays of the
	// same submission are skipped; the bool reports whether a credit was
	// applied.
	RecordApproval(ctx context.Context, childID uuid.UUID, points int64, submissionID uuid.UUID, metadata datatypes.JSON) (*types.LedgerEntry, bool, error)
	Balance(ctx context.Context, childID uuid.UUID) (int64, bool, error)
	Entries(ctx context.Context, childID uuid.UUID) ([]*types.LedgerEntry, error)
}

type ledgerService struct {
	db          *gorm.DB
	log         *logger.Logger
	ledgerRepo  repos.LedgerEntryRepo
	childRepo   repos.ChildRepo
	progression ProgressionService
	cache       BalanceCache
	flight      singleflight.Group
}

func NewLedgerService(db *gorm.DB, log *logger.Logger, ledgerRepo repos.LedgerEntryRepo, childRepo repos.ChildRepo, progression ProgressionService, cache BalanceCache) LedgerService {
	return &ledgerService{
		db:          db,
		log:         log.With("service", "LedgerService"),
		ledgerRepo:  ledgerRepo,
		childRepo:   childRepo,
		progression: progression,
		cache:       cache,
	}
}

func (s *ledgerService) Append(ctx context.Context, childID uuid.UUID, delta int64, reason types.LedgerReason, refID *uuid.UUID, metadata datatypes.JSON) (*types.LedgerEntry, error) {
	if delta == 0 {
		return nil, ErrZeroDelta
	}
	if !reason.Valid() {
		return nil, ErrInvalidReason
	}

	child, err := s.childRepo.GetByID(ctx, nil, childID)
	if err != nil {
		return nil, fmt.Errorf("load child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	entry := &types.LedgerEntry{
		ID:       uuid.New(),
		ChildID:  childID,
		Delta:    delta,
		Reason:   reason,
		RefID:    refID,
		Metadata: metadata,
	}
	if _, err := s.ledgerRepo.Create(ctx, nil, []*types.LedgerEntry{entry}); err != nil {
		// A lost append is a lost point award; this must reach the caller.
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}
	s.invalidate(ctx, childID)

	// Post-append hook (application-level, not a DB trigger). The entry is
	// already durable; a failure here leaves an incomplete crossing that the
	// next invocation completes.
	if err := s.progression.HandleLedgerChange(ctx, childID); err != nil {
		s.log.Error("Progression after append failed", "child_id", childID, "entry_id", entry.ID, "error", err)
		return entry, fmt.Errorf("progression after append: %w", err)
	}
	s.invalidate(ctx, childID)

	return entry, nil
}

func (s *ledgerService) RecordApproval(ctx context.Context, childID uuid.UUID, points int64, submissionID uuid.UUID, metadata datatypes.JSON) (*types.LedgerEntry, bool, error) {
	if submissionID == uuid.Nil {
		return nil, false, fmt.Errorf("approval submission id required")
	}

	// The change feed delivers at least once, and the HTTP path can race it.
	// Dedup lives in the unique (child_id, reason, ref_id) index: whichever
	// delivery inserts first wins, every other one hits the constraint.
	entry, err := s.Append(ctx, childID, points, types.ReasonChoreApproved, &submissionID, metadata)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Debug("Approval already credited, skipping", "child_id", childID, "submission_id", submissionID)
			return nil, false, nil
		}
		return entry, entry != nil, err
	}
	return entry, true, nil
}

func (s *ledgerService) Balance(ctx context.Context, childID uuid.UUID) (int64, bool, error) {
	if s.cache != nil {
		if balance, ok, err := s.cache.Get(ctx, childID); err != nil {
			s.log.Warn("Balance cache read failed", "child_id", childID, "error", err)
		} else if ok {
			return balance, true, nil
		}
	}

	v, err, _ := s.flight.Do(childID.String(), func() (interface{}, error) {
		balance, err := s.ledgerRepo.SumForChild(ctx, nil, childID)
		if err != nil {
			return int64(0), err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, childID, balance); err != nil {
				s.log.Warn("Balance cache write failed", "child_id", childID, "error", err)
			}
		}
		return balance, nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("project balance: %w", err)
	}
	return v.(int64), false, nil
}

func (s *ledgerService) Entries(ctx context.Context, childID uuid.UUID) ([]*types.LedgerEntry, error) {
	return s.ledgerRepo.GetByChildID(ctx, nil, childID)
}

func (s *ledgerService) invalidate(ctx context.Context, childID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, childID); err != nil {
		s.log.Warn("Balance cache invalidation failed", "child_id", childID, "error", err)
	}
}
