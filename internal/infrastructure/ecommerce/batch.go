package ecommerce

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arbicart/backend/internal/domain/pricing"
)

// DefaultBatchWidth is the number of concurrent per-item searches
const DefaultBatchWidth = 3

// itemSearchFunc prices one item
type itemSearchFunc func(ctx context.Context, item string) (pricing.PricedItem, error)

// ItemFailure records why one item of a batch could not be priced
type ItemFailure struct {
	Item string
	Err  error
}

// BatchResult is the settled outcome of a batch search
type BatchResult struct {
	Items    map[string]pricing.PricedItem
	Failures []ItemFailure
}

// Err joins the per-item failures, or returns nil
func (r BatchResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Item, f.Err))
	}
	return errors.Join(errs...)
}

// searchAll runs search for every item with at most width in flight.
// Each item settles on its own: a failure never cancels its siblings.
func searchAll(ctx context.Context, items []string, width int, search itemSearchFunc, logger *zap.Logger) BatchResult {
	if width <= 0 {
		width = DefaultBatchWidth
	}

	var (
		mu     sync.Mutex
		result = BatchResult{Items: make(map[string]pricing.PricedItem, len(items))}
	)

	var g errgroup.Group
	g.SetLimit(width)
	for _, item := range items {
		g.Go(func() error {
			priced, err := search(ctx, item)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Debug("item search failed", zap.String("item", item), zap.Error(err))
				result.Failures = append(result.Failures, ItemFailure{Item: item, Err: err})
				return nil
			}
			result.Items[item] = priced
			return nil
		})
	}
	_ = g.Wait()

	return result
}

// outcomeOf converts a settled batch into a provider outcome
func outcomeOf(r BatchResult) pricing.ProviderOutcome {
	if len(r.Items) == 0 {
		if err := r.Err(); err != nil {
			return pricing.Failed(fmt.Errorf("%w: %w", pricing.ErrProviderNoResults, err))
		}
		return pricing.Failed(pricing.ErrProviderNoResults)
	}
	return pricing.Found(r.Items)
}
