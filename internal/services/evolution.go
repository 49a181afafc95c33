package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/repos"
	"github.com/sproutly/sproutly-backend/internal/types"
)

// ProgressPercent is the percentage of the current goal the balance covers.
// A threshold of zero or less yields 0.
func ProgressPercent(balance, threshold int64) float64 {
	if threshold <= 0 {
		return 0
	}
	return 100 * float64(balance) / float64(threshold)
}

// LevelForProgress maps goal progress onto an evolution level 1-5. Level 5 is
// only reachable here at 100%+; routine updates below the threshold top out
// at 4, and the achievement path forces 5 explicitly.
func LevelForProgress(balance, threshold int64) int {
	p := ProgressPercent(balance, threshold)
	switch {
	case p <= 0:
		return 1
	case p <= 33:
		return 2
	case p < 67:
		return 3
	case p < 100:
		return 4
	default:
		return types.MaxEvolutionLevel
	}
}

// EvolutionOverview is the read shape handed to clients polling after a
// change notification.
type EvolutionOverview struct {
	Slots           []*types.EvolutionSlot `json:"slots"`
	CurrentSlot     int                    `json:"current_slot"` // 0 when all slots are frozen
	GoalsCompleted  int64                  `json:"goals_completed"`
	Balance         int64                  `json:"balance"`
	GoalThreshold   int64                  `json:"goal_threshold"`
	ProgressPercent float64                `json:"progress_percent"`
}

type EvolutionService interface {
	Overview(ctx context.Context, childID uuid.UUID) (*EvolutionOverview, error)
}

type evolutionService struct {
	db          *gorm.DB
	log         *logger.Logger
	slotRepo    repos.EvolutionSlotRepo
	historyRepo repos.GoalHistoryRepo
	configRepo  repos.GoalConfigRepo
	ledgerRepo  repos.LedgerEntryRepo
}

func NewEvolutionService(db *gorm.DB, log *logger.Logger, slotRepo repos.EvolutionSlotRepo, historyRepo repos.GoalHistoryRepo, configRepo repos.GoalConfigRepo, ledgerRepo repos.LedgerEntryRepo) EvolutionService {
	return &evolutionService{
		db:          db,
		log:         log.With("service", "EvolutionService"),
		slotRepo:    slotRepo,
		historyRepo: historyRepo,
		configRepo:  configRepo,
		ledgerRepo:  ledgerRepo,
	}
}

func (s *evolutionService) Overview(ctx context.Context, childID uuid.UUID) (*EvolutionOverview, error) {
	slots, err := s.slotRepo.GetByChildID(ctx, nil, childID)
	if err != nil {
		return nil, err
	}
	completed, err := s.historyRepo.CountForChild(ctx, nil, childID)
	if err != nil {
		return nil, err
	}
	balance, err := s.ledgerRepo.SumForChild(ctx, nil, childID)
	if err != nil {
		return nil, err
	}

	var threshold int64
	cfg, err := s.configRepo.GetByChildID(ctx, nil, childID)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		threshold = cfg.GoalThreshold
	}

	current := int(completed) + 1
	if current > types.MaxEvolutionSlots {
		current = 0
	}

	return &EvolutionOverview{
		Slots:           slots,
		CurrentSlot:     current,
		GoalsCompleted:  completed,
		Balance:         balance,
		GoalThreshold:   threshold,
		ProgressPercent: ProgressPercent(balance, threshold),
	}, nil
}
