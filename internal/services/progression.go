package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/repos"
	"github.com/sproutly/sproutly-backend/internal/types"
)

// DefaultDedupWindow is how far back the detector looks for a history row
// with the same balance before treating an invocation as a replay.
const DefaultDedupWindow = 60 * time.Second

// ProgressionService reacts to ledger changes: it detects goal crossings,
// records them, rolls the balance over and keeps evolution slots current.
// HandleLedgerChange tolerates being invoked any number of times for the same
// underlying event.
type ProgressionService interface {
	HandleLedgerChange(ctx context.Context, childID uuid.UUID) error
}

type progressionService struct {
	db          *gorm.DB
	log         *logger.Logger
	ledgerRepo  repos.LedgerEntryRepo
	configRepo  repos.GoalConfigRepo
	historyRepo repos.GoalHistoryRepo
	slotRepo    repos.EvolutionSlotRepo
	dedupWindow time.Duration
	locks       *childLocks
	now         func() time.Time
}

func NewProgressionService(db *gorm.DB, log *logger.Logger, ledgerRepo repos.LedgerEntryRepo, configRepo repos.GoalConfigRepo, historyRepo repos.GoalHistoryRepo, slotRepo repos.EvolutionSlotRepo, dedupWindow time.Duration) ProgressionService {
	if dedupWindow <= 0 {
		dedupWindow = DefaultDedupWindow
	}
	return &progressionService{
		db:          db,
		log:         log.With("service", "ProgressionService"),
		ledgerRepo:  ledgerRepo,
		configRepo:  configRepo,
		historyRepo: historyRepo,
		slotRepo:    slotRepo,
		dedupWindow: dedupWindow,
		locks:       newChildLocks(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *progressionService) HandleLedgerChange(ctx context.Context, childID uuid.UUID) error {
	if childID == uuid.Nil {
		return nil
	}

	// Per-child serialization: two concurrent crossings must not both decide
	// they are "the" crossing.
	unlock := s.locks.lock(childID)
	defer unlock()

	cfg, err := s.configRepo.GetByChildID(ctx, nil, childID)
	if err != nil {
		return fmt.Errorf("load goal config: %w", err)
	}
	if cfg == nil || cfg.GoalThreshold <= 0 {
		// No goal active. Not an error; nothing to detect and no progress to
		// compute a level from.
		return nil
	}

	balance, err := s.ledgerRepo.SumForChild(ctx, nil, childID)
	if err != nil {
		return fmt.Errorf("project balance: %w", err)
	}

	if balance < cfg.GoalThreshold {
		return s.refreshCurrentSlot(ctx, nil, childID, balance, cfg.GoalThreshold)
	}

	now := s.now()
	recent, err := s.historyRepo.FindRecentByBalance(ctx, nil, childID, balance, now.Add(-s.dedupWindow))
	if err != nil {
		return fmt.Errorf("dedup lookup: %w", err)
	}
	if recent != nil {
		rolledOver, err := s.ledgerRepo.ExistsByRef(ctx, nil, childID, types.ReasonGoalAchievedReset, recent.ID)
		if err != nil {
			return fmt.Errorf("rollover lookup: %w", err)
		}
		if rolledOver {
			// Replay of a fully handled crossing.
			s.log.Debug("Achievement already handled, skipping", "child_id", childID, "history_id", recent.ID)
			return s.refreshCurrentSlot(ctx, nil, childID, balance, cfg.GoalThreshold)
		}
		// History exists but the compensating entry never landed: a crash
		// between the two writes. Finish the achievement rather than
		// double-recording it.
		s.log.Warn("Completing partially applied achievement", "child_id", childID, "history_id", recent.ID)
		return s.completeAchievement(ctx, childID, recent)
	}

	return s.achieve(ctx, childID, cfg, balance, now)
}

// achieve performs one crossing as a single transaction: history row,
// compensating ledger entry, level-5 force on the just-completed slot, then a
// refresh of the next slot against the rolled-over balance.
func (s *progressionService) achieve(ctx context.Context, childID uuid.UUID, cfg *types.GoalConfig, balance int64, now time.Time) error {
	s.log.Info("Goal achieved", "child_id", childID, "threshold", cfg.GoalThreshold, "balance", balance)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		completedBefore, err := s.historyRepo.CountForChild(ctx, tx, childID)
		if err != nil {
			return fmt.Errorf("count goal history: %w", err)
		}

		hist := &types.GoalHistory{
			ID:                   uuid.New(),
			ChildID:              childID,
			GoalThreshold:        cfg.GoalThreshold,
			RewardDescription:    cfg.RewardDescription,
			BalanceAtAchievement: balance,
			AchievedAt:           now,
		}
		if _, err := s.historyRepo.Create(ctx, tx, []*types.GoalHistory{hist}); err != nil {
			return fmt.Errorf("record achievement: %w", err)
		}

		if err := s.rollover(ctx, tx, childID, hist); err != nil {
			return err
		}

		completedSlot := int(completedBefore) + 1
		if err := s.forceSlotLevel(ctx, tx, childID, completedSlot, types.MaxEvolutionLevel); err != nil {
			return err
		}

		return s.refreshSlot(ctx, tx, childID, completedSlot+1, balance-cfg.GoalThreshold, cfg.GoalThreshold)
	})
}

// completeAchievement finishes a crossing whose history row exists but whose
// rollover entry is missing.
func (s *progressionService) completeAchievement(ctx context.Context, childID uuid.UUID, hist *types.GoalHistory) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.rollover(ctx, tx, childID, hist); err != nil {
			return err
		}

		completed, err := s.historyRepo.CountForChild(ctx, tx, childID)
		if err != nil {
			return fmt.Errorf("count goal history: %w", err)
		}
		if err := s.forceSlotLevel(ctx, tx, childID, int(completed), types.MaxEvolutionLevel); err != nil {
			return err
		}

		return s.refreshSlot(ctx, tx, childID, int(completed)+1, hist.BalanceAtAchievement-hist.GoalThreshold, hist.GoalThreshold)
	})
}

// rollover appends the compensating ledger entry so the balance resumes from
// the overshoot. The entry references the history row, which is how replays
// distinguish "handled" from "half-handled".
func (s *progressionService) rollover(ctx context.Context, tx *gorm.DB, childID uuid.UUID, hist *types.GoalHistory) error {
	entry := &types.LedgerEntry{
		ID:      uuid.New(),
		ChildID: childID,
		Delta:   -hist.GoalThreshold,
		Reason:  types.ReasonGoalAchievedReset,
		RefID:   &hist.ID,
	}
	if _, err := s.ledgerRepo.Create(ctx, tx, []*types.LedgerEntry{entry}); err != nil {
		return fmt.Errorf("append rollover entry: %w", err)
	}
	return nil
}

// refreshCurrentSlot recomputes the level of whichever slot is current.
func (s *progressionService) refreshCurrentSlot(ctx context.Context, tx *gorm.DB, childID uuid.UUID, balance, threshold int64) error {
	completed, err := s.historyRepo.CountForChild(ctx, tx, childID)
	if err != nil {
		return fmt.Errorf("count goal history: %w", err)
	}
	return s.refreshSlot(ctx, tx, childID, int(completed)+1, balance, threshold)
}

// refreshSlot lazily creates the slot and raises its level to the computed
// one. Levels never move down, and slots past the cap are never touched.
func (s *progressionService) refreshSlot(ctx context.Context, tx *gorm.DB, childID uuid.UUID, slotNumber int, balance, threshold int64) error {
	if slotNumber > types.MaxEvolutionSlots {
		return nil
	}

	computed := LevelForProgress(balance, threshold)

	slot, err := s.slotRepo.GetByChildAndNumber(ctx, tx, childID, slotNumber)
	if err != nil {
		return fmt.Errorf("load evolution slot: %w", err)
	}
	if slot == nil {
		_, err := s.slotRepo.Create(ctx, tx, []*types.EvolutionSlot{{
			ID:         uuid.New(),
			ChildID:    childID,
			SlotNumber: slotNumber,
			Level:      computed,
		}})
		if err != nil {
			return fmt.Errorf("create evolution slot: %w", err)
		}
		return nil
	}

	if computed > slot.Level {
		if err := s.slotRepo.UpdateLevel(ctx, tx, slot.ID, computed); err != nil {
			return fmt.Errorf("update evolution slot level: %w", err)
		}
	}
	return nil
}

// forceSlotLevel pins a slot to the given level regardless of computed
// progress; the achievement path uses it to set the completed slot to 5.
func (s *progressionService) forceSlotLevel(ctx context.Context, tx *gorm.DB, childID uuid.UUID, slotNumber, level int) error {
	if slotNumber > types.MaxEvolutionSlots {
		return nil
	}

	slot, err := s.slotRepo.GetByChildAndNumber(ctx, tx, childID, slotNumber)
	if err != nil {
		return fmt.Errorf("load evolution slot: %w", err)
	}
	if slot == nil {
		_, err := s.slotRepo.Create(ctx, tx, []*types.EvolutionSlot{{
			ID:         uuid.New(),
			ChildID:    childID,
			SlotNumber: slotNumber,
			Level:      level,
		}})
		if err != nil {
			return fmt.Errorf("create evolution slot: %w", err)
		}
		return nil
	}

	if level > slot.Level {
		if err := s.slotRepo.UpdateLevel(ctx, tx, slot.ID, level); err != nil {
			return fmt.Errorf("update evolution slot level: %w", err)
		}
	}
	return nil
}
