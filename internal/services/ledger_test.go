package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/types"
)

type memCache struct {
	mu sync.Mutex
	m  map[uuid.UUID]int64
}

func newMemCache() *memCache {
	return &memCache{m: make(map[uuid.UUID]int64)}
}

func (c *memCache) Get(_ context.Context, childID uuid.UUID) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[childID]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, childID uuid.UUID, balance int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[childID] = balance
	return nil
}

func (c *memCache) Invalidate(_ context.Context, childID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, childID)
	return nil
}

func TestAppendValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ledger.Append(ctx, f.childID, 0, types.ReasonManualAdjustment, nil, nil); !errors.Is(err, ErrZeroDelta) {
		t.Errorf("zero delta error = %v, want ErrZeroDelta", err)
	}
	if _, err := f.ledger.Append(ctx, f.childID, 5, types.LedgerReason("bogus"), nil, nil); !errors.Is(err, ErrInvalidReason) {
		t.Errorf("bogus reason error = %v, want ErrInvalidReason", err)
	}
	if _, err := f.ledger.Append(ctx, uuid.New(), 5, types.ReasonManualAdjustment, nil, nil); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("unknown child error = %v, want ErrChildNotFound", err)
	}
}

func TestRecordApprovalSkipsReplays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	submission := uuid.New()

	_, applied, err := f.ledger.RecordApproval(ctx, f.childID, 10, submission, nil)
	if err != nil {
		t.Fatalf("first approval: %v", err)
	}
	if !applied {
		t.Fatal("first approval not applied")
	}

	// At-least-once delivery replays the same submission.
	_, applied, err = f.ledger.RecordApproval(ctx, f.childID, 10, submission, nil)
	if err != nil {
		t.Fatalf("replayed approval: %v", err)
	}
	if applied {
		t.Error("replayed approval credited twice")
	}
	if got := f.sum(t); got != 10 {
		t.Fatalf("sum = %d, want 10", got)
	}
}

func TestConcurrentApprovalsCreditOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	submission := uuid.New()

	// Simultaneous deliveries of one submission: the HTTP surface racing the
	// change feed, or two instances seeing the same event.
	var applied int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := f.ledger.RecordApproval(ctx, f.childID, 10, submission, nil)
			if err != nil {
				t.Errorf("concurrent approval: %v", err)
				return
			}
			if ok {
				atomic.AddInt64(&applied, 1)
			}
		}()
	}
	wg.Wait()

	if applied != 1 {
		t.Fatalf("applied count = %d, want 1", applied)
	}
	if got := f.sum(t); got != 10 {
		t.Fatalf("sum = %d, want 10", got)
	}
}

func TestBalanceReadsThroughCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := newMemCache()
	ledger := NewLedgerService(f.db, logger.NewNop(), f.ledgerRepo, f.childRepo, f.progression, cache)

	if _, err := ledger.Append(ctx, f.childID, 25, types.ReasonManualAdjustment, nil, nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	balance, cached, err := ledger.Balance(ctx, f.childID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 25 || cached {
		t.Fatalf("first read = (%d, cached=%v), want (25, false)", balance, cached)
	}

	balance, cached, err = ledger.Balance(ctx, f.childID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 25 || !cached {
		t.Fatalf("second read = (%d, cached=%v), want (25, true)", balance, cached)
	}

	// A new append drops the cached value.
	if _, err := ledger.Append(ctx, f.childID, 5, types.ReasonManualAdjustment, nil, nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	balance, cached, err = ledger.Balance(ctx, f.childID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 30 || cached {
		t.Fatalf("post-append read = (%d, cached=%v), want (30, false)", balance, cached)
	}
}

func TestSumIsOrderIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	deltas := []int64{10, -3, 42, -7, 1, 1, 1, -20, 100, -5}
	var want int64
	var wg sync.WaitGroup
	for _, d := range deltas {
		want += d
		wg.Add(1)
		go func(d int64) {
			defer wg.Done()
			entry := &types.LedgerEntry{ChildID: f.childID, Delta: d, Reason: types.ReasonManualAdjustment}
			if _, err := f.ledgerRepo.Create(ctx, nil, []*types.LedgerEntry{entry}); err != nil {
				t.Errorf("concurrent append: %v", err)
			}
		}(d)
	}
	wg.Wait()

	if got := f.sum(t); got != want {
		t.Fatalf("sum = %d, want %d", got, want)
	}
}
