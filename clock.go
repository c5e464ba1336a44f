package warpgate

import "time"

// Clock is a monotonic time source. Now returns the time elapsed since an
// arbitrary fixed origin.
type Clock interface {
	Now() time.Duration
}

// MonotonicClock reads the process monotonic clock.
type MonotonicClock struct {
	epoch time.Time
}

// NewMonotonicClock returns a clock whose origin is the moment of the call.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{epoch: time.Now()}
}

// Now returns the monotonic time since the clock was created.
func (c *MonotonicClock) Now() time.Duration {
	return time.Since(c.epoch)
}

// ManualClock only moves when told to. Used by tests and scripted runs.
type ManualClock struct {
	now time.Duration
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Duration { return c.now }

// Advance moves the clock forward by d. Negative values are ignored so the
// clock stays monotonic.
func (c *ManualClock) Advance(d time.Duration) {
	if d > 0 {
		c.now += d
	}
}

// Set moves the clock to t if t is not in the past.
func (c *ManualClock) Set(t time.Duration) {
	if t > c.now {
		c.now = t
	}
}
