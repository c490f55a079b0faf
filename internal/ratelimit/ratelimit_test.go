package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisLimiter, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	limiter := NewRedisLimiter(client, "contact", 5, time.Hour)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return limiter, mr, cleanup
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	limiter, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := limiter.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "hit %d", i+1)
		assert.Equal(t, 4-i, d.Remaining)
	}

	d, err := limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Hour, d.RetryAfter)

	// other addresses have their own window
	d, err = limiter.Allow(ctx, "198.51.100.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	assert.Equal(t, time.Hour, mr.TTL("ratelimit:contact:203.0.113.7"))

	mr.FastForward(time.Hour)
	d, err = limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.Remaining)
}

func TestRedisLimiter_ConnectionError(t *testing.T) {
	limiter, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	mr.Close()

	_, err := limiter.Allow(context.Background(), "203.0.113.7")
	assert.Error(t, err)
}

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(5, time.Hour)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := limiter.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	now = now.Add(20 * time.Minute)
	d, err := limiter.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 40*time.Minute, d.RetryAfter)

	now = now.Add(40 * time.Minute)
	assert.Equal(t, 1, limiter.Prune())
	d, err = limiter.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestRedisLimiter_RepairsCounterWithoutExpiry(t *testing.T) {
	limiter, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	// a counter left behind by a crash between INCR and EXPIRE
	require.NoError(t, mr.Set("ratelimit:contact:203.0.113.7", "9"))

	d, err := limiter.Allow(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Hour, d.RetryAfter)
	assert.Equal(t, time.Hour, mr.TTL("ratelimit:contact:203.0.113.7"))

	mr.FastForward(time.Hour)
	d, err = limiter.Allow(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestMemoryLimiter_RunPrunesClosedWindows(t *testing.T) {
	limiter := NewMemoryLimiter(5, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, ip := range []string{"a", "b", "c"} {
		_, err := limiter.Allow(ctx, ip)
		require.NoError(t, err)
	}
	assert.Len(t, limiter.windows, 3)

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 3, limiter.Prune())
	assert.Empty(t, limiter.windows)

	done := make(chan struct{})
	go func() {
		limiter.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
}
