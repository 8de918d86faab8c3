// Package ratelimit implements a fixed window counter over a pluggable Store.
//
// A window opens on the first request for a key and lasts Window. Up to Limit
// requests inside it are allowed; the rest are denied until it closes. Expired
// entries are treated as absent, so stores never need to purge eagerly.
package ratelimit

import (
	"context"
	"time"

	ptime "contactgate/internal/platform/time"
)

// Defaults for the contact route
const (
	DefaultLimit  = 5
	DefaultWindow = 60 * time.Second
	KeyPrefix     = "rate:contact:"
)

// Entry is one counter window
type Entry struct {
	Count     int       `json:"count"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the window is over at now
func (e Entry) Expired(now time.Time) bool { return !now.Before(e.ExpiresAt) }

// Store persists entries; Get returns (nil, nil) for a missing key
// ttl lets remote stores expire keys themselves
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, key string, e Entry, ttl time.Duration) error
}

// Policy is the window shape
type Policy struct {
	Limit  int
	Window time.Duration
}

// Decision is the outcome of one Check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetIn is the time until the current window closes
	ResetIn time.Duration
}

// RetryAfter is ResetIn rounded up to whole seconds, never negative
func (d Decision) RetryAfter() int64 { return ptime.CeilSeconds(d.ResetIn) }

// Key builds the store key for a client address
func Key(addr string) string { return KeyPrefix + addr }

// Limiter applies a Policy to a Store
type Limiter struct {
	store  Store
	policy Policy
	clock  ptime.Clock
}

// Option configures a Limiter
type Option func(*Limiter)

// WithPolicy overrides the default 5 per 60s
func WithPolicy(p Policy) Option {
	return func(l *Limiter) {
		if p.Limit > 0 {
			l.policy.Limit = p.Limit
		}
		if p.Window > 0 {
			l.policy.Window = p.Window
		}
	}
}

// WithClock injects a time source
func WithClock(c ptime.Clock) Option {
	return func(l *Limiter) { l.clock = ptime.OrSystem(c) }
}

// New builds a Limiter over store
func New(store Store, opts ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		policy: Policy{Limit: DefaultLimit, Window: DefaultWindow},
		clock:  ptime.System,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Policy returns the effective policy
func (l *Limiter) Policy() Policy { return l.policy }

// Check counts one request for addr.
// A store error yields an allowing decision together with the error, so callers
// can log it and fail open.
func (l *Limiter) Check(ctx context.Context, addr string) (Decision, error) {
	key := Key(addr)
	now := l.clock.Now()
	open := Decision{Allowed: true, Limit: l.policy.Limit, Remaining: l.policy.Limit - 1, ResetIn: l.policy.Window}

	cur, err := l.store.Get(ctx, key)
	if err != nil {
		return open, err
	}

	if cur == nil || cur.Expired(now) {
		next := Entry{Count: 1, ExpiresAt: now.Add(l.policy.Window)}
		return open, l.store.Put(ctx, key, next, l.policy.Window)
	}

	resetIn := cur.ExpiresAt.Sub(now)
	if resetIn < 0 {
		resetIn = 0
	}

	if cur.Count >= l.policy.Limit {
		return Decision{Allowed: false, Limit: l.policy.Limit, Remaining: 0, ResetIn: resetIn}, nil
	}

	next := Entry{Count: cur.Count + 1, ExpiresAt: cur.ExpiresAt}
	d := Decision{
		Allowed:   true,
		Limit:     l.policy.Limit,
		Remaining: l.policy.Limit - next.Count,
		ResetIn:   resetIn,
	}
	return d, l.store.Put(ctx, key, next, resetIn)
}
