// Package ratelimit provides fixed-window request counters for the intake
// pipeline. Implementations must make the read-compare-increment step atomic
// per key so concurrent requests cannot double-admit at a window boundary.
package ratelimit

import (
	"context"
	"time"
)

// Limiter admits or rejects one request against a fixed window counter.
// Allow returns false when the key has exhausted its limit for the current
// window. An error means the backing store failed; callers decide whether
// to fail open.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
