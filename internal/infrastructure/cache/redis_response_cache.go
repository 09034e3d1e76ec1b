package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arbicart/backend/internal/domain/pricing"
)

const defaultKeyPrefix = "arbicart:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisResponseCache shares price responses between instances through
// Redis. Expiry is delegated to Redis key TTLs.
type RedisResponseCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisResponseCache connects to Redis and verifies the connection
func NewRedisResponseCache(cfg RedisConfig, keyPrefix string, logger *zap.Logger) (*RedisResponseCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisResponseCacheWithClient(client, keyPrefix, logger), nil
}

// NewRedisResponseCacheWithClient wraps an existing client
func NewRedisResponseCacheWithClient(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisResponseCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisResponseCache{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

// Get returns the cached response. Redis and decoding errors count as misses.
func (c *RedisResponseCache) Get(ctx context.Context, key string) (*pricing.PriceResponse, bool) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("price cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var resp pricing.PriceResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &resp, true
}

// Set stores resp with SET ... EX ttl
func (c *RedisResponseCache) Set(ctx context.Context, key string, resp *pricing.PriceResponse, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode price response: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache price response: %w", err)
	}
	return nil
}

// Has checks for a live key without transferring the value
func (c *RedisResponseCache) Has(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cache key: %w", err)
	}
	return n > 0, nil
}

// Close closes the Redis client
func (c *RedisResponseCache) Close() error {
	return c.client.Close()
}

// Backend names the storage used
func (c *RedisResponseCache) Backend() string {
	return "redis"
}

var _ pricing.ResponseCache = (*RedisResponseCache)(nil)
