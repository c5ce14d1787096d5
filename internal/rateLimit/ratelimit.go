package rateLimit

import (
	"context"
	"time"

	redisadapter "github.com/robertarktes/booth-auction-manager/internal/adapters/redis"
	"github.com/robertarktes/booth-auction-manager/internal/observability"
)

// RateLimiter is a fixed-window limiter on Redis INCR/EXPIRE. A nil
// RateLimiter (no Redis configured) allows everything.
type RateLimiter struct {
	redis *redisadapter.Cache
}

func NewRateLimiter(redis *redisadapter.Cache) *RateLimiter {
	return &RateLimiter{redis: redis}
}

func (rl *RateLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) bool {
	if rl == nil || rl.redis == nil {
		return true
	}
	fullKey := "rl:" + key

	pipe := rl.redis.Client().Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, period)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return true
	}

	if incr.Val() > int64(rate) {
		observability.RateLimitExceeded.Inc()
		return false
	}
	return true
}
