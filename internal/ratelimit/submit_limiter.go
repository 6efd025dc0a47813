package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/openwater/aquabill/internal/config"
	redis "github.com/redis/go-redis/v9"
)

// SubmitLimiter throttles reading submissions per operator and serializes
// concurrent submissions for a single connection across instances. With no
// redis configured it is a no-op and every request passes.
type SubmitLimiter struct {
	enabled bool
	bucket  *TokenBucket
	locker  *Locker
	rate    float64
	burst   int
	lockTTL time.Duration
}

func NewSubmitLimiter(cfg config.RateLimitConfig, client *redis.Client) *SubmitLimiter {
	if !cfg.Enabled || client == nil {
		return &SubmitLimiter{}
	}
	return &SubmitLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    cfg.SubmitRate,
		burst:   cfg.SubmitBurst,
		lockTTL: time.Duration(cfg.LockTTLSecs) * time.Second,
	}
}

func (l *SubmitLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowActor takes one token from the operator's submission bucket.
func (l *SubmitLimiter) AllowActor(ctx context.Context, actorID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf("aquabill:submit:actor:%s", actorID), l.rate, l.burst)
	if err != nil {
		return false, err
	}
	return res.Allowed, nil
}

// TryLockConnection acquires the per-connection submission lock. Callers
// must release with the returned token.
func (l *SubmitLimiter) TryLockConnection(ctx context.Context, connectionID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, fmt.Sprintf("aquabill:submit:connection:%s", connectionID), l.lockTTL)
}

func (l *SubmitLimiter) ReleaseConnection(ctx context.Context, connectionID, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, fmt.Sprintf("aquabill:submit:connection:%s", connectionID), token)
}
