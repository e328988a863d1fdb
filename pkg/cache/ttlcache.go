package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/illmade-knight/go-storecache/pkg/throttle"
	"github.com/rs/zerolog"
)

// entry pairs a value with its write timestamp. Entries are stored and
// replaced as whole values under the lock, so a reader can never observe
// a timestamp from one write and a value from another.
type entry[V any] struct {
	value     V
	writtenAt time.Time
}

// TTLCache is a generic, thread-safe, in-memory cache whose entries expire
// a fixed duration after they are written. Expiry is checked at read time;
// there is no background eviction. A TTL of zero means entries never
// expire.
type TTLCache[K comparable, V any] struct {
	ttl    time.Duration
	logger zerolog.Logger

	mu   sync.RWMutex
	data map[K]entry[V]

	now func() time.Time
}

// NewTTLCache creates a new in-memory TTL cache.
func NewTTLCache[K comparable, V any](ttl time.Duration, logger zerolog.Logger) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		ttl:    ttl,
		logger: logger.With().Str("component", "TTLCache").Logger(),
		data:   make(map[K]entry[V]),
		now:    time.Now,
	}
}

// Get retrieves an entry, reporting a miss if it is absent or was written
// more than the TTL ago.
func (c *TTLCache[K, V]) Get(_ context.Context, key K) (V, bool) {
	c.mu.RLock()
	ent, ok := c.data[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if c.ttl > 0 && c.now().Sub(ent.writtenAt) > c.ttl {
		return zero, false
	}
	return ent.value, true
}

// Put stores a value. Attempting to store a non-real verdict is a
// programmer error upstream; it is logged and dropped rather than cached.
func (c *TTLCache[K, V]) Put(_ context.Context, key K, value V, verdict throttle.Verdict) {
	if verdict != throttle.VerdictReal {
		c.logger.Warn().
			Str("key", fmt.Sprintf("%v", key)).
			Stringer("verdict", verdict).
			Msg("Rejected cache write with non-real verdict.")
		return
	}

	c.mu.Lock()
	c.data[key] = entry[V]{value: value, writtenAt: c.now()}
	c.mu.Unlock()
}

// Invalidate removes a single entry.
func (c *TTLCache[K, V]) Invalidate(_ context.Context, key K) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// InvalidateAll removes every entry.
func (c *TTLCache[K, V]) InvalidateAll(_ context.Context) {
	c.mu.Lock()
	c.data = make(map[K]entry[V])
	c.mu.Unlock()
}
