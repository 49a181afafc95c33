package app

import (
	"gorm.io/gorm"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/services"
)

type Services struct {
	Child       services.ChildService
	Ledger      services.LedgerService
	Goal        services.GoalService
	Progression services.ProgressionService
	Evolution   services.EvolutionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, cache services.BalanceCache) Services {
	log.Info("Wiring services...")

	progression := services.NewProgressionService(db, log, reposet.LedgerEntry, reposet.GoalConfig, reposet.GoalHistory, reposet.EvolutionSlot, cfg.DedupWindow)
	ledger := services.NewLedgerService(db, log, reposet.LedgerEntry, reposet.Child, progression, cache)
	goal := services.NewGoalService(db, log, reposet.GoalConfig, reposet.GoalHistory, reposet.Child, progression)
	evolution := services.NewEvolutionService(db, log, reposet.EvolutionSlot, reposet.GoalHistory, reposet.GoalConfig, reposet.LedgerEntry)
	child := services.NewChildService(db, log, reposet.Child)

	return Services{
		Child:       child,
		Ledger:      ledger,
		Goal:        goal,
		Progression: progression,
		Evolution:   evolution,
	}
}
