package services

import (
	"context"
	"testing"
)

func TestLevelForProgress(t *testing.T) {
	cases := []struct {
		name      string
		balance   int64
		threshold int64
		want      int
	}{
		{name: "no_threshold", balance: 50, threshold: 0, want: 1},
		{name: "negative_threshold", balance: 50, threshold: -10, want: 1},
		{name: "zero_balance", balance: 0, threshold: 100, want: 1},
		{name: "negative_balance", balance: -5, threshold: 100, want: 1},
		{name: "just_started", balance: 1, threshold: 100, want: 2},
		{name: "one_third", balance: 33, threshold: 100, want: 2},
		{name: "past_one_third", balance: 34, threshold: 100, want: 3},
		{name: "below_two_thirds", balance: 66, threshold: 100, want: 3},
		{name: "two_thirds", balance: 67, threshold: 100, want: 4},
		{name: "almost_there", balance: 99, threshold: 100, want: 4},
		{name: "at_goal", balance: 100, threshold: 100, want: 5},
		{name: "past_goal", balance: 150, threshold: 100, want: 5},
		{name: "fractional_band", balance: 1, threshold: 3, want: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LevelForProgress(tc.balance, tc.threshold)
			if got != tc.want {
				t.Fatalf("LevelForProgress(%d, %d)=%d, want %d", tc.balance, tc.threshold, got, tc.want)
			}
		})
	}
}

func TestProgressPercent(t *testing.T) {
	if got := ProgressPercent(50, 0); got != 0 {
		t.Errorf("ProgressPercent(50, 0)=%v, want 0", got)
	}
	if got := ProgressPercent(50, 100); got != 50 {
		t.Errorf("ProgressPercent(50, 100)=%v, want 50", got)
	}
	if got := ProgressPercent(110, 100); got != 110 {
		t.Errorf("ProgressPercent(110, 100)=%v, want 110", got)
	}
}

func TestOverviewAfterFirstAchievement(t *testing.T) {
	f := newFixture(t)
	f.setGoal(t, 100, "zoo trip")

	f.credit(t, 110)
	f.credit(t, 5)

	svc := NewEvolutionService(f.db, nopLog(), f.slotRepo, f.historyRepo, f.configRepo, f.ledgerRepo)
	overview, err := svc.Overview(context.Background(), f.childID)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if overview.GoalsCompleted != 1 {
		t.Errorf("goals_completed = %d, want 1", overview.GoalsCompleted)
	}
	if overview.CurrentSlot != 2 {
		t.Errorf("current_slot = %d, want 2", overview.CurrentSlot)
	}
	if overview.Balance != 15 {
		t.Errorf("balance = %d, want 15", overview.Balance)
	}
	if overview.ProgressPercent != 15 {
		t.Errorf("progress = %v, want 15", overview.ProgressPercent)
	}
	if len(overview.Slots) != 2 {
		t.Fatalf("slots = %d, want 2", len(overview.Slots))
	}
	if overview.Slots[0].Level != 5 {
		t.Errorf("slot 1 level = %d, want 5", overview.Slots[0].Level)
	}
}
