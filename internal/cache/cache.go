// Package cache provides the externally-owned schema cache. The inference
// core is pure and stateless; callers that want to avoid re-sampling a
// table inject one of these caches, keyed by (table, column) with a
// time-based expiry.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/snowq-dev/snowq/internal/schema"
)

// DefaultTTL matches the original deployment's one-hour schema expiry.
const DefaultTTL = time.Hour

// Key identifies one cached schema.
type Key struct {
	Table  string
	Column string
}

// Cache is the read/write dependency injected into callers that want
// schema reuse across generation calls.
type Cache interface {
	// Get returns the cached schema for key, or ok=false on a miss or
	// expired entry.
	Get(ctx context.Context, key Key) (s *schema.PathSchema, ok bool, err error)

	// Put stores the schema for key, stamping it with the current time.
	Put(ctx context.Context, key Key, s *schema.PathSchema) error
}

// Memory is an in-process Cache with TTL expiry.
// Safe for concurrent use.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[Key]memoryEntry
}

type memoryEntry struct {
	schema   *schema.PathSchema
	storedAt time.Time
}

// NewMemory creates a memory cache with the given TTL.
// A non-positive TTL falls back to DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	return NewMemoryWithClock(ttl, time.Now)
}

// NewMemoryWithClock creates a memory cache with an injected clock.
// Tests use a deterministic clock to exercise expiry without sleeping.
func NewMemoryWithClock(ttl time.Duration, now func() time.Time) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:     ttl,
		now:     now,
		entries: make(map[Key]memoryEntry),
	}
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key Key) (*schema.PathSchema, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || m.now().Sub(entry.storedAt) >= m.ttl {
		return nil, false, nil
	}
	return entry.schema, true, nil
}

// Put implements Cache.
func (m *Memory) Put(_ context.Context, key Key, s *schema.PathSchema) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{schema: s, storedAt: m.now()}
	m.mu.Unlock()
	return nil
}

// Len returns the number of entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
