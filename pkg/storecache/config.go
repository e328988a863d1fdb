package storecache

import (
	"time"

	"github.com/illmade-knight/go-storecache/pkg/limiter"
)

const (
	// DefaultListingTTL is how long a cached key listing may be served
	// without revalidation.
	DefaultListingTTL = 10 * time.Second
	// DefaultFetchTimeout bounds a single refresh operation once it has
	// detached from its caller.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultListingLimit is the advisory page size for listing calls.
	DefaultListingLimit = 100
)

// defaultProbeKeys are generic key names worth probing when a listing
// call is throttled. They are a heuristic guess at common naming, not a
// contract with the store; override ProbeKeys when the deployment knows
// better.
var defaultProbeKeys = []string{"default", "global", "data", "config"}

// Config holds tuning for a Service. The zero value is usable; defaults
// are applied by New.
type Config struct {
	// ListingTTL is the expiry for cached key listings and container
	// listings.
	ListingTTL time.Duration
	// MinInterval is the per-key spacing for user-triggered value
	// fetches.
	MinInterval time.Duration
	// FetchTimeout bounds each refresh operation independently of the
	// triggering caller's context.
	FetchTimeout time.Duration
	// ListingLimit is passed to the client as the advisory page size.
	ListingLimit int
	// Sentinel overrides the throttle sentinel key name. Empty uses
	// store.ThrottledKeySentinel.
	Sentinel string
	// OwnerKey is an identifier-derived key for the current user (for
	// example "Player_" plus their user ID). When set it is probed first
	// after a throttled listing.
	OwnerKey string
	// ProbeKeys are candidate keys probed, in order, when a listing call
	// is throttled. Nil uses the default heuristics.
	ProbeKeys []string
}

func (c *Config) applyDefaults() {
	if c.ListingTTL <= 0 {
		c.ListingTTL = DefaultListingTTL
	}
	if c.MinInterval <= 0 {
		c.MinInterval = limiter.DefaultMinInterval
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.ListingLimit <= 0 {
		c.ListingLimit = DefaultListingLimit
	}
	if c.ProbeKeys == nil {
		c.ProbeKeys = defaultProbeKeys
	}
}
