package session

import "sync"

// Locks hands out one RWMutex per session id.
type Locks struct {
	mu    sync.Mutex
	locks map[uint64]*sync.RWMutex
}

// NewLocks returns an empty lock table.
func NewLocks() *Locks {
	return &Locks{locks: make(map[uint64]*sync.RWMutex)}
}

// For returns the lock for id, creating it on first use.
func (l *Locks) For(id uint64) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.RWMutex{}
		l.locks[id] = lock
	}
	return lock
}
