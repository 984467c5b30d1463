package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLimiter(t *testing.T, window time.Duration, max int) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLimiter(client, window, max), mr
}

func TestRedisLimiterAllowsUpToMax(t *testing.T) {
	l, _ := newTestRedisLimiter(t, time.Minute, 2)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLimiterWindowExpires(t *testing.T) {
	l, mr := newTestRedisLimiter(t, time.Minute, 1)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(61 * time.Second)

	ok, err = l.Allow(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterKeysAreIndependent(t *testing.T) {
	l, _ := newTestRedisLimiter(t, time.Minute, 1)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "client-1")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "client-2")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "client-1")
	assert.False(t, ok)
}

func TestRedisLimiterErrorWhenRedisDown(t *testing.T) {
	l, mr := newTestRedisLimiter(t, time.Minute, 1)
	mr.Close()

	_, err := l.Allow(context.Background(), "client-1")
	assert.Error(t, err)
}
