package cache

import (
	"sync"
	"time"
)

// DefaultTTL applies when Set is called with a non-positive TTL
const DefaultTTL = 15 * time.Minute

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e cacheEntry[V]) isExpired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// TTLCache is a mutex-guarded map with per-entry expiry.
//
// Expiry is passive: an expired entry is evicted by the Get or Has that
// finds it. There is no sweeper, so expired entries nobody reads again stay
// in memory; the key space (ZIP × basket) bounds that.
type TTLCache[V any] struct {
	mu      sync.Mutex
	entries map[string]cacheEntry[V]
	now     Clock
}

// TTLCacheOption configures a TTLCache
type TTLCacheOption[V any] func(*TTLCache[V])

// WithClock replaces the wall clock
func WithClock[V any](clock Clock) TTLCacheOption[V] {
	return func(c *TTLCache[V]) {
		if clock != nil {
			c.now = clock
		}
	}
}

// NewTTLCache creates an empty cache
func NewTTLCache[V any](opts ...TTLCacheOption[V]) *TTLCache[V] {
	c := &TTLCache[V]{
		entries: make(map[string]cacheEntry[V]),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key if present and unexpired
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if e.isExpired(c.now()) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry and its expiry
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry[V]{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// Has reports whether Get would return a value
func (c *TTLCache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes key
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, expired ones included
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
