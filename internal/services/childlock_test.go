package services

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestChildLockSerializesPerChild(t *testing.T) {
	locks := newChildLocks()
	childID := uuid.New()

	var counter, max int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(childID)
			defer unlock()

			mu.Lock()
			counter++
			if counter > max {
				max = counter
			}
			mu.Unlock()

			mu.Lock()
			counter--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if max != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", max)
	}

	locks.mu.Lock()
	remaining := len(locks.locks)
	locks.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("lock table has %d entries after release, want 0", remaining)
	}
}

func TestChildLockIndependentChildren(t *testing.T) {
	locks := newChildLocks()
	a, b := uuid.New(), uuid.New()

	unlockA := locks.lock(a)
	done := make(chan struct{})
	go func() {
		unlockB := locks.lock(b)
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}
