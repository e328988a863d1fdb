// Package cache provides generic TTL caches for backing-store results.
// Writes are gated by throttle verdict: only real data may be cached, so a
// throttled placeholder can never be frozen in for a TTL window.
package cache

import (
	"context"

	"github.com/illmade-knight/go-storecache/pkg/throttle"
)

// Cache is a generic interface for a verdict-gated caching layer.
type Cache[K comparable, V any] interface {
	// Get retrieves an unexpired entry. A miss is a normal signal, never
	// an error.
	Get(ctx context.Context, key K) (V, bool)
	// Put stores a value. Non-real verdicts are rejected as a logged
	// no-op; enforcement lives here rather than being trusted to callers.
	Put(ctx context.Context, key K, value V, verdict throttle.Verdict)
	// Invalidate removes a single entry.
	Invalidate(ctx context.Context, key K)
	// InvalidateAll removes every entry.
	InvalidateAll(ctx context.Context)
}
