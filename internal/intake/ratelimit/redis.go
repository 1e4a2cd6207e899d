// internal/intake/ratelimit/redis.go
package ratelimit

import (
	"context"
	"time"

	"sei-core/internal/common/database"
)

const redisKeyPrefix = "ratelimit:"

// RedisLimiter counts windows in Redis so multiple instances share quotas.
// INCR is atomic, which gives the required check-and-increment guarantee.
type RedisLimiter struct {
	client *database.RedisClient
}

func NewRedisLimiter(client *database.RedisClient) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := redisKeyPrefix + key

	count, err := r.client.Incr(ctx, redisKey)
	if err != nil {
		return false, err
	}
	// First hit in a window owns setting the expiry.
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, window); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}
