// Package store defines the data model and client contract for a
// rate-limited, container/key/value backing store, along with the typed
// errors the rest of the module maps store ambiguity into.
package store

// ContainerRef identifies a backing-store container by name and scope.
// It is immutable and comparable, and is used as a cache key throughout
// the module.
type ContainerRef struct {
	Name  string
	Scope string
}

// String returns a stable "name/scope" form suitable for log fields and
// per-target limiter keys.
func (r ContainerRef) String() string {
	if r.Scope == "" {
		return r.Name
	}
	return r.Name + "/" + r.Scope
}

// KeyDescriptor describes a single key within a container listing.
// LastModified is whatever the store reports: a formatted timestamp for
// some stores, an opaque version string for others.
type KeyDescriptor struct {
	Name         string
	Size         int64
	LastModified string
}

// KeyListing is the ordered result of listing a container's keys.
// A listing is replaced wholesale on refresh, never mutated in place.
// Partial marks a listing that was synthesized from a successful
// candidate-key probe rather than a full listing call; callers should
// present it as incomplete.
type KeyListing struct {
	Keys    []KeyDescriptor
	Partial bool
}

// Provenance records where a ValueRecord's payload actually came from.
type Provenance string

const (
	// ProvenanceReal marks a value read directly from the backing store.
	ProvenanceReal Provenance = "real"
	// ProvenanceFallback marks a value served from cache or synthesized
	// while the store was throttling.
	ProvenanceFallback Provenance = "fallback"
)

// ValueRecord is a single key's payload plus metadata. Throttled is set by
// the client when the store returned a structurally valid placeholder
// instead of real data; the throttle detector is the only component that
// should interpret it. Source is a human-readable label for presentation
// ("store", "cache", "probe").
type ValueRecord struct {
	Key        string
	Value      any
	Type       string
	Size       int64
	Provenance Provenance
	Source     string
	Throttled  bool
}
