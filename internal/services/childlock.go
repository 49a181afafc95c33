package services

import (
	"sync"

	"github.com/google/uuid"
)

// childLocks hands out one mutex per child so the detect-and-achieve sequence
// runs serialized per child while different children proceed in parallel.
// Entries are refcounted and dropped once the last holder releases.
type childLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*childLock
}

type childLock struct {
	mu   sync.Mutex
	refs int
}

func newChildLocks() *childLocks {
	return &childLocks{locks: make(map[uuid.UUID]*childLock)}
}

func (c *childLocks) lock(childID uuid.UUID) (unlock func()) {
	c.mu.Lock()
	l, ok := c.locks[childID]
	if !ok {
		l = &childLock{}
		c.locks[childID] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, childID)
		}
		c.mu.Unlock()
	}
}
