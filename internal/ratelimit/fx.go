package ratelimit

import (
	"github.com/openwater/aquabill/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// NewRedisClient returns nil when rate limiting is disabled; the limiter
// degrades to a pass-through in that case.
func NewRedisClient(cfg config.Config) *redis.Client {
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})
}

func NewSubmitLimiterFromConfig(cfg config.Config, client *redis.Client) *SubmitLimiter {
	return NewSubmitLimiter(cfg.RateLimit, client)
}

var Module = fx.Module("ratelimit",
	fx.Provide(NewRedisClient),
	fx.Provide(NewSubmitLimiterFromConfig),
)
