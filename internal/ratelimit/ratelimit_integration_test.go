//go:build integration

package ratelimit

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/placements/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestQueryLimiterAgainstRedis(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	l, err := NewQueryLimiter(NewTokenBucket(client), config.RateLimitConfig{QueryRate: 1, QueryBurst: 2})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "query", "u-1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2, res.Limit)
	}
	res, err := l.Allow(ctx, "query", "u-1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	other, err := l.Allow(ctx, "query", "u-2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestLockerAgainstRedis(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	l := NewLocker(client)

	token, ok, err := l.TryLock(ctx, "placements:lock:p-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "placements:lock:p-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, "placements:lock:p-1", token))
	_, ok, err = l.TryLock(ctx, "placements:lock:p-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
