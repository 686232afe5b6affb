package clock

import "time"

// Clock lets services and handlers read the current time without calling
// time.Now directly.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the instant it holds.
type FixedClock struct {
	FixedNow time.Time
}

func NewFixed(t time.Time) *FixedClock {
	return &FixedClock{FixedNow: t.UTC()}
}

func (c *FixedClock) Now() time.Time {
	return c.FixedNow
}

func (c *FixedClock) SetNow(now time.Time) {
	c.FixedNow = now.UTC()
}
