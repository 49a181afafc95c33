package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/repos"
	"github.com/sproutly/sproutly-backend/internal/types"
)

// GoalService owns the mutable per-child goal settings and the read side of
// the achievement record. Changing the config never rewrites past
// achievements; those carry their own snapshots.
type GoalService interface {
	GetConfig(ctx context.Context, childID uuid.UUID) (*types.GoalConfig, error)
	UpdateConfig(ctx context.Context, childID uuid.UUID, threshold int64, rewardDescription *string) (*types.GoalConfig, error)
	History(ctx context.Context, childID uuid.UUID) ([]*types.GoalHistory, error)
}

type goalService struct {
	db          *gorm.DB
	log         *logger.Logger
	configRepo  repos.GoalConfigRepo
	historyRepo repos.GoalHistoryRepo
	childRepo   repos.ChildRepo
	progression ProgressionService
}

func NewGoalService(db *gorm.DB, log *logger.Logger, configRepo repos.GoalConfigRepo, historyRepo repos.GoalHistoryRepo, childRepo repos.ChildRepo, progression ProgressionService) GoalService {
	return &goalService{
		db:          db,
		log:         log.With("service", "GoalService"),
		configRepo:  configRepo,
		historyRepo: historyRepo,
		childRepo:   childRepo,
		progression: progression,
	}
}

func (s *goalService) GetConfig(ctx context.Context, childID uuid.UUID) (*types.GoalConfig, error) {
	return s.configRepo.GetByChildID(ctx, nil, childID)
}

func (s *goalService) UpdateConfig(ctx context.Context, childID uuid.UUID, threshold int64, rewardDescription *string) (*types.GoalConfig, error) {
	if threshold <= 0 {
		return nil, ErrInvalidThreshold
	}

	child, err := s.childRepo.GetByID(ctx, nil, childID)
	if err != nil {
		return nil, fmt.Errorf("load child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	existing, err := s.configRepo.GetByChildID(ctx, nil, childID)
	if err != nil {
		return nil, fmt.Errorf("load goal config: %w", err)
	}

	row := &types.GoalConfig{
		ChildID:           childID,
		GoalThreshold:     threshold,
		RewardDescription: rewardDescription,
	}
	if existing != nil {
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
	}
	if err := s.configRepo.Upsert(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("save goal config: %w", err)
	}
	s.log.Info("Goal config updated", "child_id", childID, "threshold", threshold)

	// A lowered threshold can put the current balance at or past the goal
	// without any new ledger entry, so re-run detection now.
	if err := s.progression.HandleLedgerChange(ctx, childID); err != nil {
		return row, fmt.Errorf("progression after config change: %w", err)
	}

	return row, nil
}

func (s *goalService) History(ctx context.Context, childID uuid.UUID) ([]*types.GoalHistory, error) {
	return s.historyRepo.GetByChildID(ctx, nil, childID)
}
