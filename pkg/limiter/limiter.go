// Package limiter enforces a minimum wall-clock interval between calls
// for the same logical target. It protects a rate-limited backing store
// from user-interaction bursts (repeated clicks on the same key),
// independently of any cache TTL.
package limiter

import (
	"sync"
	"time"
)

// DefaultMinInterval is the spacing applied when none is configured.
const DefaultMinInterval = 1 * time.Second

// MinInterval is a per-target minimum-interval limiter. Unlike a token
// bucket it allows no bursts: one call per target per interval, full stop.
// It is safe for concurrent use.
type MinInterval struct {
	minInterval time.Duration

	mu       sync.Mutex
	lastCall map[string]time.Time

	now func() time.Time
}

// NewMinInterval creates a limiter with the given spacing. A non-positive
// interval falls back to DefaultMinInterval.
func NewMinInterval(minInterval time.Duration) *MinInterval {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &MinInterval{
		minInterval: minInterval,
		lastCall:    make(map[string]time.Time),
		now:         time.Now,
	}
}

// Allow reports whether a call for target may proceed now. When it
// returns true the call is recorded; when it returns false no state
// changes, so a denied caller does not push the window further out.
func (l *MinInterval) Allow(target string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.lastCall[target]; ok && now.Sub(last) < l.minInterval {
		return false
	}
	l.lastCall[target] = now
	return true
}

// RetryAfter returns how long until the next call for target would be
// allowed. Zero means a call is allowed immediately.
func (l *MinInterval) RetryAfter(target string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.lastCall[target]
	if !ok {
		return 0
	}
	remaining := l.minInterval - l.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset forgets all recorded calls.
func (l *MinInterval) Reset() {
	l.mu.Lock()
	l.lastCall = make(map[string]time.Time)
	l.mu.Unlock()
}
