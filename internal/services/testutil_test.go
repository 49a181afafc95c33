package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/repos"
	"github.com/sproutly/sproutly-backend/internal/types"
)

type fixture struct {
	db          *gorm.DB
	childRepo   repos.ChildRepo
	ledgerRepo  repos.LedgerEntryRepo
	configRepo  repos.GoalConfigRepo
	historyRepo repos.GoalHistoryRepo
	slotRepo    repos.EvolutionSlotRepo
	progression *progressionService
	ledger      LedgerService
	childID     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	// A single connection keeps the in-memory database shared and serialized.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&types.Child{},
		&types.LedgerEntry{},
		&types.GoalConfig{},
		&types.GoalHistory{},
		&types.EvolutionSlot{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	log := logger.NewNop()
	childRepo := repos.NewChildRepo(db, log)
	ledgerRepo := repos.NewLedgerEntryRepo(db, log)
	configRepo := repos.NewGoalConfigRepo(db, log)
	historyRepo := repos.NewGoalHistoryRepo(db, log)
	slotRepo := repos.NewEvolutionSlotRepo(db, log)

	progression := NewProgressionService(db, log, ledgerRepo, configRepo, historyRepo, slotRepo, DefaultDedupWindow).(*progressionService)
	ledger := NewLedgerService(db, log, ledgerRepo, childRepo, progression, nil)

	child := &types.Child{ID: uuid.New(), FamilyID: uuid.New(), Name: "Robin"}
	if _, err := childRepo.Create(context.Background(), nil, []*types.Child{child}); err != nil {
		t.Fatalf("seed child: %v", err)
	}

	return &fixture{
		db:          db,
		childRepo:   childRepo,
		ledgerRepo:  ledgerRepo,
		configRepo:  configRepo,
		historyRepo: historyRepo,
		slotRepo:    slotRepo,
		progression: progression,
		ledger:      ledger,
		childID:     child.ID,
	}
}

func (f *fixture) setGoal(t *testing.T, threshold int64, reward string) {
	t.Helper()
	cfg := &types.GoalConfig{
		ChildID:       f.childID,
		GoalThreshold: threshold,
	}
	if reward != "" {
		cfg.RewardDescription = &reward
	}
	if err := f.configRepo.Upsert(context.Background(), nil, cfg); err != nil {
		t.Fatalf("seed goal config: %v", err)
	}
}

func (f *fixture) credit(t *testing.T, delta int64) {
	t.Helper()
	if _, err := f.ledger.Append(context.Background(), f.childID, delta, types.ReasonChoreApproved, refID(), nil); err != nil {
		t.Fatalf("append %+d: %v", delta, err)
	}
}

func (f *fixture) adjust(t *testing.T, delta int64) {
	t.Helper()
	if _, err := f.ledger.Append(context.Background(), f.childID, delta, types.ReasonManualAdjustment, nil, nil); err != nil {
		t.Fatalf("adjust %+d: %v", delta, err)
	}
}

func (f *fixture) sum(t *testing.T) int64 {
	t.Helper()
	total, err := f.ledgerRepo.SumForChild(context.Background(), nil, f.childID)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	return total
}

func (f *fixture) history(t *testing.T) []*types.GoalHistory {
	t.Helper()
	rows, err := f.historyRepo.GetByChildID(context.Background(), nil, f.childID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	return rows
}

func (f *fixture) slots(t *testing.T) []*types.EvolutionSlot {
	t.Helper()
	rows, err := f.slotRepo.GetByChildID(context.Background(), nil, f.childID)
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	return rows
}

func (f *fixture) slotLevel(t *testing.T, number int) int {
	t.Helper()
	slot, err := f.slotRepo.GetByChildAndNumber(context.Background(), nil, f.childID, number)
	if err != nil {
		t.Fatalf("slot %d: %v", number, err)
	}
	if slot == nil {
		t.Fatalf("slot %d does not exist", number)
	}
	return slot.Level
}

func (f *fixture) rolloverEntries(t *testing.T) []*types.LedgerEntry {
	t.Helper()
	entries, err := f.ledgerRepo.GetByChildID(context.Background(), nil, f.childID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	var out []*types.LedgerEntry
	for _, e := range entries {
		if e.Reason == types.ReasonGoalAchievedReset {
			out = append(out, e)
		}
	}
	return out
}

// advanceClock moves the progression service's notion of now so consecutive
// crossings with identical balances fall outside the dedup window.
func (f *fixture) advanceClock(d time.Duration) {
	base := f.progression.now()
	f.progression.now = func() time.Time { return base.Add(d) }
}

func refID() *uuid.UUID {
	id := uuid.New()
	return &id
}

func nopLog() *logger.Logger {
	return logger.NewNop()
}
