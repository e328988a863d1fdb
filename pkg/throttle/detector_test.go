package throttle_test

import (
	"testing"

	"github.com/illmade-knight/go-storecache/pkg/store"
	"github.com/illmade-knight/go-storecache/pkg/throttle"
	"github.com/stretchr/testify/assert"
)

func TestDetector_ClassifyListing(t *testing.T) {
	detector := throttle.NewDetector("")

	t.Run("Real listing", func(t *testing.T) {
		listing := store.KeyListing{Keys: []store.KeyDescriptor{
			{Name: "Player_1"},
			{Name: "Player_2"},
		}}

		cls := detector.ClassifyListing(listing)

		assert.Equal(t, throttle.VerdictReal, cls.Verdict)
		assert.Empty(t, cls.HintKey)
	})

	t.Run("Sentinel key means throttled", func(t *testing.T) {
		listing := store.KeyListing{Keys: []store.KeyDescriptor{
			{Name: store.ThrottledKeySentinel},
		}}

		cls := detector.ClassifyListing(listing)

		assert.Equal(t, throttle.VerdictThrottled, cls.Verdict)
		assert.Empty(t, cls.HintKey)
	})

	t.Run("Sentinel alongside a real key yields a hint", func(t *testing.T) {
		listing := store.KeyListing{Keys: []store.KeyDescriptor{
			{Name: store.ThrottledKeySentinel},
			{Name: "global"},
			{Name: "other"},
		}}

		cls := detector.ClassifyListing(listing)

		assert.Equal(t, throttle.VerdictThrottled, cls.Verdict)
		assert.Equal(t, "global", cls.HintKey)
	})

	t.Run("Zero keys without sentinel is confirmed empty", func(t *testing.T) {
		cls := detector.ClassifyListing(store.KeyListing{})

		assert.Equal(t, throttle.VerdictEmpty, cls.Verdict)
	})

	t.Run("Key count alone never decides throttling", func(t *testing.T) {
		// A one-key listing whose only key is real must not be mistaken
		// for a placeholder.
		listing := store.KeyListing{Keys: []store.KeyDescriptor{{Name: "only-key"}}}

		cls := detector.ClassifyListing(listing)

		assert.Equal(t, throttle.VerdictReal, cls.Verdict)
	})

	t.Run("Custom sentinel", func(t *testing.T) {
		custom := throttle.NewDetector("PLACEHOLDER")

		cls := custom.ClassifyListing(store.KeyListing{Keys: []store.KeyDescriptor{{Name: "PLACEHOLDER"}}})
		assert.Equal(t, throttle.VerdictThrottled, cls.Verdict)

		// The default sentinel is just another key name for this detector.
		cls = custom.ClassifyListing(store.KeyListing{Keys: []store.KeyDescriptor{{Name: store.ThrottledKeySentinel}}})
		assert.Equal(t, throttle.VerdictReal, cls.Verdict)
	})
}

func TestDetector_ClassifyValue(t *testing.T) {
	detector := throttle.NewDetector("")

	t.Run("Real value", func(t *testing.T) {
		cls := detector.ClassifyValue(store.ValueRecord{Key: "k", Value: map[string]any{"coins": 10}})

		assert.Equal(t, throttle.VerdictReal, cls.Verdict)
	})

	t.Run("Throttled flag wins over payload", func(t *testing.T) {
		// The store can return a structurally valid placeholder; the
		// client's flag is the only reliable signal.
		cls := detector.ClassifyValue(store.ValueRecord{Key: "k", Value: "placeholder", Throttled: true})

		assert.Equal(t, throttle.VerdictThrottled, cls.Verdict)
	})

	t.Run("Nil value without flag is confirmed missing", func(t *testing.T) {
		cls := detector.ClassifyValue(store.ValueRecord{Key: "k"})

		assert.Equal(t, throttle.VerdictEmpty, cls.Verdict)
	})
}
