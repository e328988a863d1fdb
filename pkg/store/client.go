package store

import "context"

// ThrottledKeySentinel is the reserved key name the backing store returns
// in place of real listing data when it is rate-limiting the caller. The
// store conflates "no data" and "rate limited", so throttling is only
// detectable by exact-match comparison against this string. Detection
// lives in the throttle package; nothing else should compare against it.
const ThrottledKeySentinel = "__DATASTORE_THROTTLED__"

// Client is the contract the cache layer consumes. Implementations wrap
// whatever store the deployment talks to; they are trusted to surface
// throttling as sentinel data (the listing sentinel key, or a ValueRecord
// with Throttled set) rather than as a distinct error type.
//
// Transport and permission failures are returned as errors and should be
// wrapped with ErrStoreUnavailable by implementations that can tell them
// apart from data-level responses.
type Client interface {
	// ListContainers returns the names of all containers visible to the
	// caller.
	ListContainers(ctx context.Context) ([]string, error)
	// ListKeys lists keys within a container. pageHint and limit are
	// advisory; implementations may return fewer keys.
	ListKeys(ctx context.Context, ref ContainerRef, pageHint string, limit int) (KeyListing, error)
	// GetValue fetches a single key's value. A missing key is not an
	// error: implementations return a ValueRecord with a nil Value.
	GetValue(ctx context.Context, ref ContainerRef, key string) (ValueRecord, error)
}
