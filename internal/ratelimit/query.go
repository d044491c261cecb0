package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/placements/internal/config"
)

const keyQueryCaller = "placements:ratelimit:%s:%s"

// QueryLimiter throttles the query and market endpoints per caller. A nil
// limiter allows everything.
type QueryLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewQueryLimiter(bucket *TokenBucket, cfg config.RateLimitConfig) (*QueryLimiter, error) {
	if bucket == nil {
		return nil, nil
	}
	if cfg.QueryRate <= 0 || cfg.QueryBurst <= 0 {
		return nil, fmt.Errorf("query rate limit must be positive, got rate=%d burst=%d", cfg.QueryRate, cfg.QueryBurst)
	}
	return &QueryLimiter{
		bucket: bucket,
		rate:   float64(cfg.QueryRate),
		burst:  cfg.QueryBurst,
	}, nil
}

func (l *QueryLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow spends one token of caller's budget on endpoint.
func (l *QueryLimiter) Allow(ctx context.Context, endpoint, caller string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	caller = strings.TrimSpace(caller)
	if caller == "" {
		caller = "anonymous"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyQueryCaller, endpoint, caller), l.rate, l.burst)
}
