package service

import (
	"fmt"
	"sync"
	"time"
)

// slotLocks serializes booking commits per (provider, resource, date) key.
// The lock is held for the duration of recheck-then-write; reads never
// take it.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*slotLock
}

type slotLock struct {
	mu   sync.Mutex
	refs int
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: make(map[string]*slotLock)}
}

func lockKey(providerID, resourceID string, date time.Time) string {
	return fmt.Sprintf("%s|%s|%s", providerID, resourceID, date.Format("2006-01-02"))
}

func (l *slotLocks) lock(key string) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &slotLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

func (l *slotLocks) unlock(key string) {
	l.mu.Lock()
	entry := l.locks[key]
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
