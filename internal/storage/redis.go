package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// RedisStore keeps visitor keys in Redis. Keys expire after ttl of inactivity;
// a zero ttl keeps them forever.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisStore) Get(ctx context.Context, visitorID, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, storageKey(visitorID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisStore) Set(ctx context.Context, visitorID, key string, value []byte) error {
	if err := r.client.Set(ctx, storageKey(visitorID, key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, visitorID, key string) error {
	if err := r.client.Del(ctx, storageKey(visitorID, key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
