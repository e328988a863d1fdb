package store

import "errors"

// ErrStoreThrottled reports that the backing store is rate-limiting the
// caller and every recovery path has been exhausted. It is recoverable:
// present it as "try again shortly", not as data loss.
var ErrStoreThrottled = errors.New("backing store throttled")

// ErrStoreUnavailable reports a transport or permission failure from the
// backing store. It is surfaced immediately and never retried internally.
var ErrStoreUnavailable = errors.New("backing store unavailable")
