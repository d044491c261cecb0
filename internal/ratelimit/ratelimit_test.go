package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/placements/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledLimiterAllows(t *testing.T) {
	l, err := NewQueryLimiter(nil, config.RateLimitConfig{})
	require.NoError(t, err)
	assert.False(t, l.Enabled())

	res, err := l.Allow(context.Background(), "query", "u-1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNewQueryLimiterRejectsNonPositiveRates(t *testing.T) {
	bucket := &TokenBucket{}
	_, err := NewQueryLimiter(bucket, config.RateLimitConfig{QueryRate: 0, QueryBurst: 10})
	assert.Error(t, err)
	_, err = NewQueryLimiter(bucket, config.RateLimitConfig{QueryRate: 5, QueryBurst: -1})
	assert.Error(t, err)
}

func TestTokenBucketValidatesArguments(t *testing.T) {
	var nilBucket *TokenBucket
	_, err := nilBucket.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
}

func TestNilLockerGrants(t *testing.T) {
	var l *Locker
	token, ok, err := l.TryLock(context.Background(), "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, token)
	assert.NoError(t, l.Release(context.Background(), "k", token))
}

func TestDefaultBucketTTL(t *testing.T) {
	cases := []struct {
		rate  float64
		burst int
		want  time.Duration
	}{
		{20, 40, 4 * time.Second},
		{100, 1, time.Second},
		{0.5, 3, 12 * time.Second},
		{0, 3, time.Second},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, defaultBucketTTL(tc.rate, tc.burst))
	}
}

func TestCastReplyValues(t *testing.T) {
	assert.Equal(t, int64(1), castToInt(int64(1)))
	assert.Equal(t, int64(7), castToInt("7"))
	assert.Equal(t, 2.5, castToFloat("2.5"))
	assert.Equal(t, float64(3), castToFloat(int64(3)))
	assert.Equal(t, float64(0), castToFloat(nil))
}
