package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares fixed windows across instances. Every hit runs INCR and
// TTL in one transaction; a key without an expiry gets the window.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, prefix string, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: period,
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := r.limitKey(key)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		ttl = pipe.TTL(ctx, k)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("redis incr failed: %w", err)
	}

	remaining := ttl.Val()
	if remaining <= 0 {
		// new window, or a counter left behind without an expiry
		if err := r.client.Expire(ctx, k, r.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("redis expire failed: %w", err)
		}
		remaining = r.window
	}
	return decide(incr.Val(), r.limit, remaining), nil
}

func (r *RedisLimiter) limitKey(key string) string {
	return fmt.Sprintf("ratelimit:%s:%s", r.prefix, key)
}
