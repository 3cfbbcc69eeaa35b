// Package counter provides the persisted counter adapters behind the usage
// gate: PostgreSQL for signed-in users, a device cookie for anonymous
// visitors, and an in-memory map for tests and local development.
package counter

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	n       int
	expires time.Time
}

// Memory is a TTL-aware in-memory counter store.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: map[string]memoryEntry{}, now: time.Now}
}

// NewMemoryWithClock returns a store whose expiry checks use the given clock.
func NewMemoryWithClock(now func() time.Time) *Memory {
	m := NewMemory()
	if now != nil {
		m.now = now
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return 0, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return 0, false, nil
	}
	return e.n, true, nil
}

func (m *Memory) Set(_ context.Context, key string, n int, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{n: n}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *Memory) IncrementOrCreate(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if ok && !e.expires.IsZero() && !m.now().Before(e.expires) {
		ok = false
	}
	if !ok {
		e = memoryEntry{}
	}
	e.n++
	m.entries[key] = e
	return e.n, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
