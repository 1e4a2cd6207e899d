// internal/intake/ratelimit/memory.go
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowEntry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a process-local limiter for single-instance deployments.
// Entries are overwritten on first access past their window; there is no
// background eviction.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return NewMemoryLimiterWithClock(time.Now)
}

// NewMemoryLimiterWithClock injects the clock, for tests.
func NewMemoryLimiterWithClock(now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*windowEntry),
		now:     now,
	}
}

func (m *MemoryLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, ok := m.entries[key]
	if !ok || now.After(entry.resetAt) {
		m.entries[key] = &windowEntry{count: 1, resetAt: now.Add(window)}
		return true, nil
	}
	if entry.count >= limit {
		return false, nil
	}
	entry.count++
	return true, nil
}
