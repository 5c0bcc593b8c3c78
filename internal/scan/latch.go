package scan

import (
	"sync"
	"time"
)

// Reset delays used by the scanner screens.
const (
	// DefaultResetDelay applies to the general scanner (tracks, playlists, albums, URLs).
	DefaultResetDelay = 1200 * time.Millisecond

	// TrackResetDelay applies to the track-only scanner.
	TrackResetDelay = 2 * time.Second
)

// Latch serializes scans per device: while a key is held further scans for
// it are rejected, and the key reopens a fixed delay after release.
type Latch struct {
	mu        sync.Mutex
	held      map[string]struct{}
	afterFunc func(time.Duration, func())
}

// NewLatch creates an empty latch.
func NewLatch() *Latch {
	return &Latch{
		held: make(map[string]struct{}),
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// TryAcquire holds key and reports whether it was free.
func (l *Latch) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return false
	}
	l.held[key] = struct{}{}
	return true
}

// Release frees key after delay. A non-positive delay frees it immediately.
func (l *Latch) Release(key string, delay time.Duration) {
	if delay <= 0 {
		l.unlock(key)
		return
	}
	l.afterFunc(delay, func() { l.unlock(key) })
}

// Held reports whether key is currently held.
func (l *Latch) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, busy := l.held[key]
	return busy
}

func (l *Latch) unlock(key string) {
	l.mu.Lock()
	delete(l.held, key)
	l.mu.Unlock()
}
