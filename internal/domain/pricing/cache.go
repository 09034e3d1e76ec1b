package pricing

import (
	"context"
	"time"
)

// ResponseCache stores resolved price responses by cache key.
// Implementations treat backend failures as misses.
type ResponseCache interface {
	Get(ctx context.Context, key string) (*PriceResponse, bool)
	Set(ctx context.Context, key string, resp *PriceResponse, ttl time.Duration) error
}
