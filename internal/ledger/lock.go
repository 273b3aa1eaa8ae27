package ledger

import (
	"context"
	"sync"
)

// LocalLock is an in-process EventLock used when Redis is disabled and
// in tests. One mutex per event id.
type LocalLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocalLock() *LocalLock {
	return &LocalLock{locks: make(map[string]*sync.Mutex)}
}

func (l *LocalLock) forEvent(eventID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[eventID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[eventID] = m
	}
	return m
}

func (l *LocalLock) Acquire(_ context.Context, eventID, _ string) error {
	l.forEvent(eventID).Lock()
	return nil
}

func (l *LocalLock) Release(_ context.Context, eventID, _ string) error {
	l.forEvent(eventID).Unlock()
	return nil
}
