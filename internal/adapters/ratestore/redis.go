package ratestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"contactgate/internal/core/ratelimit"
	ptime "contactgate/internal/platform/time"

	"github.com/redis/go-redis/v9"
)

// Connect builds a client from a redis:// URL or a bare host:port
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var c *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		c = redis.NewClient(opt)
	} else {
		c = redis.NewClient(&redis.Options{Addr: redisURL})
	}
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return c, nil
}

// Redis stores entries as JSON with a key TTL, so windows expire on their own.
// Increments are read-then-write; concurrent requests from one address may
// both pass near the limit, which only errs on the permissive side.
type Redis struct {
	client redis.Cmdable
}

// NewRedis wraps an existing client
func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

// Get returns (nil, nil) for a missing key
func (s *Redis) Get(ctx context.Context, key string) (*ratelimit.Entry, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var e ratelimit.Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// a corrupt value behaves like a fresh window
		return nil, nil
	}
	return &e, nil
}

// Put writes e with ttl rounded up to a whole second, the Redis resolution for SET EX
func (s *Redis) Put(ctx context.Context, key string, e ratelimit.Entry, ttl time.Duration) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("redis marshal: %w", err)
	}
	if err := s.client.Set(ctx, key, raw, expiry(ttl)).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// expiry rounds ttl up to whole seconds, at least one, so a key never expires
// before its window ends
func expiry(ttl time.Duration) time.Duration {
	return time.Duration(max(ptime.CeilSeconds(ttl), 1)) * time.Second
}

// Ping checks the connection
func (s *Redis) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

// Backend names the store in readiness output
func (s *Redis) Backend() string { return "redis" }
