package time

import (
	"testing"
	"time"
)

func TestCeilSeconds(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want int64
	}{
		{-time.Second, 0},
		{0, 0},
		{time.Millisecond, 1},
		{time.Second, 1},
		{1001 * time.Millisecond, 2},
		{59*time.Second + 999*time.Millisecond, 60},
	}
	for _, tc := range cases {
		if got := CeilSeconds(tc.in); got != tc.want {
			t.Fatalf("CeilSeconds(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestOrSystem(t *testing.T) {
	before := time.Now()
	got := OrSystem(nil).Now()
	if got.Before(before) || got.Sub(before) > time.Second {
		t.Fatalf("nil should map to the system clock, got %v", got)
	}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := ClockFunc(func() time.Time { return fixed })
	if !OrSystem(c).Now().Equal(fixed) {
		t.Fatalf("custom clock ignored")
	}
}
