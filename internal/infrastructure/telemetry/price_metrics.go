package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// ErrMeterNil is returned when a meter is required but missing
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Cache lookup results
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// PriceMetrics counts price resolution activity.
type PriceMetrics struct {
	cacheLookups       *Counter
	providerOutcomes   *Counter
	resolutions        *Counter
	resolutionDuration *Histogram
}

// NewPriceMetrics registers the price resolution instruments on meter.
func NewPriceMetrics(meter metric.Meter) (*PriceMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		pm  PriceMetrics
		err error
	)
	if pm.cacheLookups, err = NewCounter(meter,
		"arbicart_cache_lookups_total",
		"Price response cache lookups by result",
		"{lookups}",
	); err != nil {
		return nil, err
	}
	if pm.providerOutcomes, err = NewCounter(meter,
		"arbicart_provider_outcomes_total",
		"Live provider search outcomes",
		"{searches}",
	); err != nil {
		return nil, err
	}
	if pm.resolutions, err = NewCounter(meter,
		"arbicart_resolutions_total",
		"Uncached price resolutions by response source",
		"{resolutions}",
	); err != nil {
		return nil, err
	}
	if pm.resolutionDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "arbicart_resolution_duration_ms",
		Description: "Time to resolve a price request, cache hits included",
		Unit:        "ms",
		Boundaries:  ResolutionDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return &pm, nil
}

// NewNoopPriceMetrics returns metrics that record nothing.
func NewNoopPriceMetrics() *PriceMetrics {
	pm, _ := NewPriceMetrics(noop.NewMeterProvider().Meter(TracerName))
	return pm
}

// RecordCacheLookup counts one cache lookup.
func (m *PriceMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.cacheLookups.Inc(ctx, AttrResult.String(result))
}

// RecordProviderOutcome counts one provider search by outcome.
func (m *PriceMetrics) RecordProviderOutcome(ctx context.Context, provider, outcome string) {
	m.providerOutcomes.Inc(ctx, AttrProvider.String(provider), AttrOutcome.String(outcome))
}

// RecordResolution counts a built response by source.
func (m *PriceMetrics) RecordResolution(ctx context.Context, source string) {
	m.resolutions.Inc(ctx, AttrSource.String(source))
}

// RecordDuration records how long a request took to resolve.
func (m *PriceMetrics) RecordDuration(ctx context.Context, d time.Duration, source string) {
	m.resolutionDuration.RecordMillis(ctx, d, AttrSource.String(source))
}
