package clock

import "time"

// FakeClock reports a fixed instant, normalized to UTC so assertions line
// up with the timestamps services persist.
type FakeClock struct {
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time { return c.now }

// Advance moves the reported instant forward, e.g. past an invoice due date.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
