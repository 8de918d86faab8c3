// Package ratestore provides the rate limit Store backends: a process-local map
// and a Redis store shared by every instance
package ratestore

import (
	"context"
	"sync"
	"time"

	"contactgate/internal/core/ratelimit"
	ptime "contactgate/internal/platform/time"
)

// DefaultSweepAbove is the map size past which Put sweeps expired keys
const DefaultSweepAbove = 1000

// Memory is a process-local Store. Counts are not shared across instances.
type Memory struct {
	mu         sync.Mutex
	items      map[string]memItem
	clock      ptime.Clock
	sweepAbove int
}

type memItem struct {
	entry    ratelimit.Entry
	deadline time.Time
}

// MemoryOptions tunes the in-process store
type MemoryOptions struct {
	Clock      ptime.Clock
	SweepAbove int
}

// NewMemory builds an empty store
func NewMemory(o MemoryOptions) *Memory {
	if o.SweepAbove <= 0 {
		o.SweepAbove = DefaultSweepAbove
	}
	return &Memory{
		items:      make(map[string]memItem),
		clock:      ptime.OrSystem(o.Clock),
		sweepAbove: o.SweepAbove,
	}
}

// Get returns the entry for key, dropping it when its ttl has passed
func (m *Memory) Get(_ context.Context, key string) (*ratelimit.Entry, error) {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return nil, nil
	}
	if !now.Before(it.deadline) {
		delete(m.items, key)
		return nil, nil
	}
	e := it.entry
	return &e, nil
}

// Put stores e for ttl; a non-positive ttl removes the key
func (m *Memory) Put(_ context.Context, key string, e ratelimit.Entry, ttl time.Duration) error {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl <= 0 {
		delete(m.items, key)
		return nil
	}
	m.items[key] = memItem{entry: e, deadline: now.Add(ttl)}
	if len(m.items) > m.sweepAbove {
		m.sweepLocked(now)
	}
	return nil
}

// Sweep removes every expired key and returns how many were dropped
func (m *Memory) Sweep() int {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(now)
}

// Len is the number of keys currently held, expired or not
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory) sweepLocked(now time.Time) int {
	n := 0
	for k, it := range m.items {
		if !now.Before(it.deadline) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

// Ping always succeeds; it lets the readiness probe treat both backends alike
func (m *Memory) Ping(context.Context) error { return nil }

// Backend names the store in readiness output
func (m *Memory) Backend() string { return "memory" }
