// Package cache provides the in-process TTL cache backing priority
// scores and the suppression set.
package cache

import (
	"sync"
	"time"

	"github.com/castlebay/warroom-go/internal/application/common"
	"github.com/castlebay/warroom-go/internal/domain/shared"
)

type entry struct {
	value     interface{}
	expiresAt time.Time // zero means no expiry
}

// MemoryCache is a mutex-guarded map cache with per-entry TTLs. Expired
// entries are dropped lazily on read; the working set (one entry per
// campaign/enemy pair) is small enough that no sweeper is needed.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	clock   shared.Clock
}

var _ common.Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty cache on the given clock. A nil clock
// uses real time.
func NewMemoryCache(clock shared.Clock) *MemoryCache {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &MemoryCache{entries: make(map[string]entry), clock: clock}
}

func (c *MemoryCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *MemoryCache) getLocked(key string) (interface{}, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && c.clock.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *MemoryCache) Put(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(key, value, ttl)
}

func (c *MemoryCache) putLocked(key string, value interface{}, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.clock.Now().Add(ttl)
	}
	c.entries[key] = e
}

func (c *MemoryCache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *MemoryCache) Remember(key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	if v, ok := c.getLocked(key); ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	// Computed outside the lock; duplicate computation on a racing miss
	// is acceptable, the priority path has its own flight dedup.
	v, err := fn()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.putLocked(key, v, ttl)
	c.mu.Unlock()
	return v, nil
}
