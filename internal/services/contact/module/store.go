package module

import (
	"context"

	"contactgate/internal/adapters/ratestore"
	"contactgate/internal/core/ratelimit"
	ptime "contactgate/internal/platform/time"
	"contactgate/internal/services/contact/domain"
)

// RateStore is a rate limit store that can report its health
type RateStore interface {
	ratelimit.Store
	domain.StoreHealth
}

// OpenStore returns the redis store when url is set and reachable, else the
// in-process map. A connect error comes back together with the memory store
// so the caller can log the fallback and carry on; that store reports the
// cause through Fallback so readiness shows degraded.
func OpenStore(ctx context.Context, url string, clock ptime.Clock, sweepAbove int) (RateStore, error) {
	mem := ratestore.NewMemory(ratestore.MemoryOptions{Clock: clock, SweepAbove: sweepAbove})
	if url == "" {
		return mem, nil
	}
	client, err := ratestore.Connect(ctx, url)
	if err != nil {
		return fallbackStore{RateStore: mem, cause: err}, err
	}
	return ratestore.NewRedis(client), nil
}

// fallbackStore is the memory store standing in for an unreachable redis
type fallbackStore struct {
	RateStore
	cause error
}

// Fallback reports why the configured store is not in use
func (f fallbackStore) Fallback() error { return f.cause }
