package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemClock_Now(t *testing.T) {
	before := time.Now()
	now := SystemClock{}.Now()

	assert.Equal(t, time.UTC, now.Location())
	assert.False(t, now.Before(before.Truncate(time.Second)))
}

func TestFixedClock(t *testing.T) {
	warsaw := time.FixedZone("CET", 60*60)
	c := NewFixed(time.Date(2025, 10, 20, 12, 0, 0, 0, warsaw))

	assert.Equal(t, time.Date(2025, 10, 20, 11, 0, 0, 0, time.UTC), c.Now())

	c.SetNow(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), c.Now())
}
