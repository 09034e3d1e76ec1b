package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arbicart/backend/internal/domain/pricing"
)

// MemoryResponseCache keeps price responses in process memory.
// It suits single-instance deployments and tests.
type MemoryResponseCache struct {
	entries *TTLCache[*pricing.PriceResponse]
	logger  *zap.Logger
}

// MemoryCacheOption is a functional option for MemoryResponseCache
type MemoryCacheOption func(*MemoryResponseCache)

// WithMemoryLogger sets the logger
func WithMemoryLogger(logger *zap.Logger) MemoryCacheOption {
	return func(c *MemoryResponseCache) {
		c.logger = logger
	}
}

// WithMemoryClock injects the clock used for expiry
func WithMemoryClock(clock Clock) MemoryCacheOption {
	return func(c *MemoryResponseCache) {
		c.entries = NewTTLCache(WithClock[*pricing.PriceResponse](clock))
	}
}

// NewMemoryResponseCache creates an empty in-memory response cache
func NewMemoryResponseCache(opts ...MemoryCacheOption) *MemoryResponseCache {
	c := &MemoryResponseCache{
		entries: NewTTLCache[*pricing.PriceResponse](),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached response for key
func (c *MemoryResponseCache) Get(_ context.Context, key string) (*pricing.PriceResponse, bool) {
	resp, ok := c.entries.Get(key)
	if ok {
		c.logger.Debug("price cache hit", zap.String("key", key))
	}
	return resp, ok
}

// Set stores resp under key for ttl
func (c *MemoryResponseCache) Set(_ context.Context, key string, resp *pricing.PriceResponse, ttl time.Duration) error {
	c.entries.Set(key, resp, ttl)
	c.logger.Debug("price cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

// Len returns the number of stored entries (for monitoring)
func (c *MemoryResponseCache) Len() int {
	return c.entries.Len()
}

// Backend names the storage used
func (c *MemoryResponseCache) Backend() string {
	return "memory"
}

var _ pricing.ResponseCache = (*MemoryResponseCache)(nil)
