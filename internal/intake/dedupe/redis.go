// internal/intake/dedupe/redis.go
package dedupe

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"sei-core/internal/common/database"
)

const redisKeyPrefix = "dedupe:"

// RedisStore keeps dedupe entries in Redis with the window as key TTL, so
// multiple instances share one dedupe view and expiry is handled by Redis.
type RedisStore struct {
	client *database.RedisClient
	window time.Duration
}

func NewRedisStore(client *database.RedisClient, window time.Duration) *RedisStore {
	return &RedisStore{client: client, window: window}
}

func (r *RedisStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	leadID, err := r.client.Get(ctx, redisKeyPrefix+key)
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return leadID, true, nil
}

func (r *RedisStore) Record(ctx context.Context, key, leadID string) error {
	// SetNX keeps the first lead ID when two writes race on one fingerprint.
	_, err := r.client.SetNX(ctx, redisKeyPrefix+key, leadID, r.window)
	return err
}
