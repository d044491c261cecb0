package ratelimit

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/placements/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("rate.limit",
	fx.Provide(
		NewRedisClient,
		func(client *redis.Client) *TokenBucket {
			if client == nil {
				return nil
			}
			return NewTokenBucket(client)
		},
		func(client *redis.Client) *Locker {
			if client == nil {
				return nil
			}
			return NewLocker(client)
		},
		func(bucket *TokenBucket, cfg config.Config) (*QueryLimiter, error) {
			return NewQueryLimiter(bucket, cfg.RateLimit)
		},
	),
)

// NewRedisClient returns nil when no redis address is configured, which
// disables rate limiting and placement locks.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *redis.Client {
	if !cfg.Redis.Enabled() {
		log.Info("redis not configured; rate limiting disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis ping failed; limiter will fail open", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}
