// Package time contains time related helpers
package time

import (
	"math"
	"time"
)

// Clock is the time source seam used by anything that reasons about windows or TTLs
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to Clock
type ClockFunc func() time.Time

// Now implements Clock
func (f ClockFunc) Now() time.Time { return f() }

// System is the wall clock
var System Clock = ClockFunc(time.Now)

// OrSystem returns c, or the wall clock when c is nil
func OrSystem(c Clock) Clock {
	if c == nil {
		return System
	}
	return c
}

// CeilSeconds rounds d up to whole seconds, never below zero
func CeilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Seconds()))
}
