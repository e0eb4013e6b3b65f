package ratelimit

import (
	"context"
	"time"
)

type redisCounter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	RateLimitKey(parts ...string) string
}

// RedisStore backs the fixed-window counters with a shared redis instance,
// for deployments with more than one process.
type RedisStore struct {
	client redisCounter
	now    func() time.Time
}

// NewRedisStore wraps the provided client.
func NewRedisStore(client redisCounter) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// Incr implements CounterStore on top of INCR + EXPIRE-on-first-hit.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	namespaced := s.client.RateLimitKey(key)
	count, err := s.client.IncrWithTTL(ctx, namespaced, window)
	if err != nil {
		return 0, time.Time{}, err
	}

	remaining, err := s.client.TTL(ctx, namespaced)
	if err != nil || remaining <= 0 {
		// TTL lookup is advisory; fall back to a full window.
		remaining = window
	}
	return count, s.now().Add(remaining), nil
}
