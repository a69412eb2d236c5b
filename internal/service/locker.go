package service

import (
	"sync"

	"github.com/google/uuid"
)

// partyLocker serializes all mutating work against a single party. The
// capacity check and the roster mutation are not atomic on their own, so
// every read-modify-write of a party document runs under its lock. Gateway
// calls never happen while the lock is held.
type partyLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newPartyLocker() *partyLocker {
	return &partyLocker{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the per-party mutex and returns the unlock function.
func (l *partyLocker) Lock(partyID uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[partyID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[partyID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
