package storecache

import "errors"

// ErrTooSoon reports that a user-triggered value fetch was denied by the
// rate limiter and no previously fetched value was available to serve
// instead. Callers should surface it as "try again shortly".
var ErrTooSoon = errors.New("value fetch too soon")
