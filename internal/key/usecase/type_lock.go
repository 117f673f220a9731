package usecase

import "sync"

// typeLock serializes generate calls per key type inside one process. Entries
// are reference counted and removed once no goroutine holds or waits for them.
type typeLock struct {
	mu    sync.Mutex
	locks map[string]*typeLockEntry
}

type typeLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newTypeLock() *typeLock {
	return &typeLock{locks: make(map[string]*typeLockEntry)}
}

// Lock blocks until the type is free and returns the matching unlock function.
func (l *typeLock) Lock(keyType string) func() {
	l.mu.Lock()
	entry, ok := l.locks[keyType]
	if !ok {
		entry = &typeLockEntry{}
		l.locks[keyType] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, keyType)
		}
		l.mu.Unlock()
	}
}
