package delivery

import (
	"context"
	"time"

	"contactgate/internal/core/render"

	"golang.org/x/time/rate"
)

// Throttled spaces sends to the wrapped channel with a token bucket
type Throttled struct {
	next Channel
	lim  *rate.Limiter
}

// Throttle wraps next so at most burst sends happen at once and one more
// token is earned every interval. A non-positive interval disables throttling.
func Throttle(next Channel, every time.Duration, burst int) Channel {
	if every <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &Throttled{next: next, lim: rate.NewLimiter(rate.Every(every), burst)}
}

// Name reports the wrapped channel
func (t *Throttled) Name() string { return t.next.Name() }

// Send waits for a token within ctx, then delegates
func (t *Throttled) Send(ctx context.Context, m render.Message) error {
	if err := t.lim.Wait(ctx); err != nil {
		return failf(err, "%s: throttled", t.next.Name())
	}
	return t.next.Send(ctx, m)
}
