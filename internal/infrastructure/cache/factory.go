package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arbicart/backend/internal/domain/pricing"
	"github.com/arbicart/backend/internal/infrastructure/config"
)

// NamedCache is a response cache that can report its backend
type NamedCache interface {
	pricing.ResponseCache
	Backend() string
}

// ResponseCacheFactory creates the response cache selected by configuration
type ResponseCacheFactory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*ResponseCacheFactory)

// WithLogger sets the logger for the factory and the caches it creates
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *ResponseCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *ResponseCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewResponseCacheFactory creates a new factory
func NewResponseCacheFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...FactoryOption) *ResponseCacheFactory {
	f := &ResponseCacheFactory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns the Redis cache when configured and reachable, else
// the in-memory cache.
func (f *ResponseCacheFactory) CreateCache() (NamedCache, error) {
	if f.cacheConfig.Backend != config.CacheBackendRedis {
		f.logger.Info("using in-memory price cache")
		return NewMemoryResponseCache(WithMemoryLogger(f.logger)), nil
	}

	store, err := NewRedisResponseCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.cacheConfig.KeyPrefix, f.logger)
	if err == nil {
		f.logger.Info("using Redis price cache", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis price cache required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory price cache. "+
		"Instances will not share cached responses.",
		zap.Error(err),
	)
	return NewMemoryResponseCache(WithMemoryLogger(f.logger)), nil
}
