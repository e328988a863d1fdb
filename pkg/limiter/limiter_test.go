package limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// White-box tests: the clock is overridden so the interval boundary can
// be asserted exactly.

func TestMinInterval_Allow(t *testing.T) {
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	t.Run("First call is allowed, repeat within interval is not", func(t *testing.T) {
		l := NewMinInterval(time.Second)
		now := base
		l.now = func() time.Time { return now }

		assert.True(t, l.Allow("PlayerData/global/K"))

		now = base.Add(500 * time.Millisecond)
		assert.False(t, l.Allow("PlayerData/global/K"))
	})

	t.Run("Allowed again exactly at the interval", func(t *testing.T) {
		l := NewMinInterval(time.Second)
		now := base
		l.now = func() time.Time { return now }

		assert.True(t, l.Allow("K"))

		now = base.Add(time.Second)
		assert.True(t, l.Allow("K"))
	})

	t.Run("Denied calls do not push the window out", func(t *testing.T) {
		l := NewMinInterval(time.Second)
		now := base
		l.now = func() time.Time { return now }

		assert.True(t, l.Allow("K"))

		// Hammering while denied must not reset the last-call timestamp.
		for _, offset := range []time.Duration{200, 400, 600, 800} {
			now = base.Add(offset * time.Millisecond)
			assert.False(t, l.Allow("K"))
		}

		now = base.Add(time.Second)
		assert.True(t, l.Allow("K"))
	})

	t.Run("Targets are independent", func(t *testing.T) {
		l := NewMinInterval(time.Second)
		now := base
		l.now = func() time.Time { return now }

		assert.True(t, l.Allow("A"))
		assert.True(t, l.Allow("B"))
		assert.False(t, l.Allow("A"))
	})

	t.Run("Non-positive interval falls back to the default", func(t *testing.T) {
		l := NewMinInterval(0)
		now := base
		l.now = func() time.Time { return now }

		assert.True(t, l.Allow("K"))

		now = base.Add(DefaultMinInterval - time.Millisecond)
		assert.False(t, l.Allow("K"))

		now = base.Add(DefaultMinInterval)
		assert.True(t, l.Allow("K"))
	})
}

func TestMinInterval_RetryAfter(t *testing.T) {
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	l := NewMinInterval(time.Second)
	now := base
	l.now = func() time.Time { return now }

	assert.Equal(t, time.Duration(0), l.RetryAfter("K"), "unknown target is immediately allowed")

	assert.True(t, l.Allow("K"))
	assert.Equal(t, time.Second, l.RetryAfter("K"))

	now = base.Add(600 * time.Millisecond)
	assert.Equal(t, 400*time.Millisecond, l.RetryAfter("K"))

	now = base.Add(2 * time.Second)
	assert.Equal(t, time.Duration(0), l.RetryAfter("K"))
}

func TestMinInterval_Reset(t *testing.T) {
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	l := NewMinInterval(time.Second)
	now := base
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("K"))
	assert.False(t, l.Allow("K"))

	l.Reset()

	assert.True(t, l.Allow("K"))
}
