package app

import (
	"gorm.io/gorm"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/repos"
)

type Repos struct {
	Child         repos.ChildRepo
	LedgerEntry   repos.LedgerEntryRepo
	GoalConfig    repos.GoalConfigRepo
	GoalHistory   repos.GoalHistoryRepo
	EvolutionSlot repos.EvolutionSlotRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Child:         repos.NewChildRepo(db, log),
		LedgerEntry:   repos.NewLedgerEntryRepo(db, log),
		GoalConfig:    repos.NewGoalConfigRepo(db, log),
		GoalHistory:   repos.NewGoalHistoryRepo(db, log),
		EvolutionSlot: repos.NewEvolutionSlotRepo(db, log),
	}
}
