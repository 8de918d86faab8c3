package testkit

import (
	"sync"
	"time"
)

// Clock is a manually advanced time source; safe for concurrent use
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a Clock at t (or at a fixed 2026-01-01 UTC instant when t is zero)
func NewClock(t time.Time) *Clock {
	if t.IsZero() {
		t = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	return &Clock{now: t}
}

// Now returns the current fake time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set jumps the clock to t
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
