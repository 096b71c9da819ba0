package testutil

import (
	"sync"
	"time"
)

// FakeClock provides a thread-safe manual clock for cache-expiry tests.
//
// Unlike time.Now, FakeClock only moves when advanced, so TTL boundaries
// can be exercised exactly without sleeping.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock frozen at the given instant.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current instant. Pass the method value as the cache's
// clock function.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
