package pipeline

import "sync"

// keyedLocks serializes runs per video. Acquisition never blocks: a second
// caller for the same video is told the video is busy and distinct videos
// proceed in parallel.
type keyedLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{held: make(map[string]bool)}
}

// TryAcquire takes the lock for the key if it is free.
func (l *keyedLocks) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[key] {
		return false
	}

	l.held[key] = true

	return true
}

// Release frees the lock for the key.
func (l *keyedLocks) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.held, key)
}
