// Package throttle classifies backing-store responses. The store signals
// rate limiting with placeholder data rather than errors, so recognizing a
// throttled response is a data inspection, not an error check. That fragile
// contract is isolated here: the rest of the module depends on the Verdict
// enum, never on the sentinel string itself.
package throttle

import "github.com/illmade-knight/go-storecache/pkg/store"

// Verdict is the classification of a single backing-store response.
type Verdict int

const (
	// VerdictReal marks a response carrying genuine data.
	VerdictReal Verdict = iota
	// VerdictThrottled marks a placeholder response the store substituted
	// while rate-limiting the caller.
	VerdictThrottled
	// VerdictEmpty marks a confirmed empty response: the call succeeded,
	// returned nothing, and carried no throttle marker.
	VerdictEmpty
)

// String returns the verdict name for log fields.
func (v Verdict) String() string {
	switch v {
	case VerdictReal:
		return "real"
	case VerdictThrottled:
		return "throttled"
	case VerdictEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Classification is the result of inspecting one response. HintKey is a
// real key name discovered incidentally in an otherwise-throttled listing,
// usable as a probe candidate.
type Classification struct {
	Verdict Verdict
	HintKey string
}

// Detector classifies responses against a configured sentinel key name.
// Classification is pure and deterministic; a Detector has no mutable
// state and is safe for concurrent use.
type Detector struct {
	sentinel string
}

// NewDetector creates a Detector. An empty sentinel falls back to
// store.ThrottledKeySentinel.
func NewDetector(sentinel string) *Detector {
	if sentinel == "" {
		sentinel = store.ThrottledKeySentinel
	}
	return &Detector{sentinel: sentinel}
}

// ClassifyListing inspects a key listing. The listing is throttled iff it
// contains the exact sentinel key name in place of real data; zero keys
// without the sentinel is a confirmed empty container. Key count alone
// never decides between "empty" and "throttled".
func (d *Detector) ClassifyListing(listing store.KeyListing) Classification {
	throttled := false
	hint := ""
	for _, key := range listing.Keys {
		if key.Name == d.sentinel {
			throttled = true
			continue
		}
		if hint == "" {
			hint = key.Name
		}
	}
	if throttled {
		return Classification{Verdict: VerdictThrottled, HintKey: hint}
	}
	if len(listing.Keys) == 0 {
		return Classification{Verdict: VerdictEmpty}
	}
	return Classification{Verdict: VerdictReal}
}

// ClassifyValue inspects a value fetch. The client marks placeholder
// values with the Throttled flag; a nil payload without that flag is a
// confirmed missing value.
func (d *Detector) ClassifyValue(record store.ValueRecord) Classification {
	if record.Throttled {
		return Classification{Verdict: VerdictThrottled}
	}
	if record.Value == nil {
		return Classification{Verdict: VerdictEmpty}
	}
	return Classification{Verdict: VerdictReal}
}
