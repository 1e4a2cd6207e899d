// internal/intake/dedupe/memory.go
package dedupe

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	leadID    string
	createdAt time.Time
}

// MemoryStore is a process-local dedupe map. Stale entries are overwritten
// on the next Record for the same key; there is no background eviction.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	window  time.Duration
	now     func() time.Time
}

func NewMemoryStore(window time.Duration) *MemoryStore {
	return NewMemoryStoreWithClock(window, time.Now)
}

// NewMemoryStoreWithClock injects the clock, for tests.
func NewMemoryStoreWithClock(window time.Duration, now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		window:  window,
		now:     now,
	}
}

func (m *MemoryStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok || m.now().Sub(entry.createdAt) >= m.window {
		return "", false, nil
	}
	return entry.leadID, true, nil
}

func (m *MemoryStore) Record(ctx context.Context, key, leadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{leadID: leadID, createdAt: m.now()}
	return nil
}
