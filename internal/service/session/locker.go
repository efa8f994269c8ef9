package session

import "sync"

// locker hands out one mutex per session id. Holding it serializes every
// read and mutation of that session together with its broadcasts.
type locker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLocker() *locker {
	return &locker{locks: make(map[string]*sync.Mutex)}
}

func (l *locker) lock(id string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
