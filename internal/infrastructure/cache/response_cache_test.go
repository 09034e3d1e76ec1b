package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arbicart/backend/internal/domain/pricing"
	"github.com/arbicart/backend/internal/infrastructure/config"
)

func sampleResponse() *pricing.PriceResponse {
	resp := &pricing.PriceResponse{
		HomeZip: "14850",
		Items:   []string{"milk"},
		Source:  pricing.SourceMock,
	}
	resp.AddSnapshot("14850", pricing.NewZipSnapshot("Ithaca (Downtown)", 42.444, -76.5019, 32000, "Wegmans Ithaca",
		map[string]pricing.PricedItem{"milk": {Price: decimal.RequireFromString("4.81"), Store: "Wegmans Ithaca"}}))
	return resp
}

func TestMemoryResponseCache(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryResponseCache(WithMemoryClock(clock.Now))

	_, ok := c.Get(ctx, "prices:14850:milk")
	assert.False(t, ok)

	resp := sampleResponse()
	require.NoError(t, c.Set(ctx, "prices:14850:milk", resp, 15*time.Minute))

	got, ok := c.Get(ctx, "prices:14850:milk")
	require.True(t, ok)
	assert.Same(t, resp, got)
	assert.Equal(t, "memory", c.Backend())

	clock.Advance(15 * time.Minute)
	_, ok = c.Get(ctx, "prices:14850:milk")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisResponseCache_BackendErrorsAreMisses(t *testing.T) {
	core, recorded := observer.New(zapcore.WarnLevel)
	c := NewRedisResponseCacheWithClient(unreachableRedis(), "", zap.New(core))
	defer c.Close()

	ctx := context.Background()
	_, ok := c.Get(ctx, "prices:14850:milk")
	assert.False(t, ok)
	assert.NotEmpty(t, recorded.FilterMessage("price cache read failed").All())

	err := c.Set(ctx, "prices:14850:milk", sampleResponse(), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to cache price response")

	_, err = c.Has(ctx, "prices:14850:milk")
	assert.Error(t, err)
	assert.Equal(t, "redis", c.Backend())
}

func TestNewRedisResponseCache_ConnectFailure(t *testing.T) {
	_, err := NewRedisResponseCache(RedisConfig{Host: "127.0.0.1", Port: 1}, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

// Runs against a real server when ARBICART_TEST_REDIS_ADDR is set.
func TestRedisResponseCache_Live(t *testing.T) {
	addr := os.Getenv("ARBICART_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ARBICART_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	c := NewRedisResponseCacheWithClient(client, "arbicart:test:", nil)
	defer c.Close()

	ctx := context.Background()
	key := "prices:14850:milk"
	require.NoError(t, c.Set(ctx, key, sampleResponse(), time.Second))

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, "14850", got.HomeZip)
	assert.Equal(t, "4.81", got.PricesByZip["14850"].Items["milk"].Price.StringFixed(2))

	has, err := c.Has(ctx, key)
	require.NoError(t, err)
	assert.True(t, has)

	time.Sleep(1100 * time.Millisecond)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
}

func TestResponseCacheFactory(t *testing.T) {
	unreachable := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("memory backend", func(t *testing.T) {
		f := NewResponseCacheFactory(config.CacheConfig{Backend: config.CacheBackendMemory}, unreachable)
		c, err := f.CreateCache()
		require.NoError(t, err)
		assert.Equal(t, "memory", c.Backend())
	})

	t.Run("redis unavailable falls back to memory", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)
		f := NewResponseCacheFactory(config.CacheConfig{Backend: config.CacheBackendRedis}, unreachable,
			WithLogger(zap.New(core)))

		c, err := f.CreateCache()
		require.NoError(t, err)
		assert.Equal(t, "memory", c.Backend())
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("redis required", func(t *testing.T) {
		f := NewResponseCacheFactory(config.CacheConfig{Backend: config.CacheBackendRedis}, unreachable,
			WithInMemoryFallback(false))

		_, err := f.CreateCache()
		require.Error(t, err)
	})
}
