// Package pricing resolves basket price comparisons across ZIP codes.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arbicart/backend/internal/domain/pricing"
	"github.com/arbicart/backend/internal/infrastructure/logger"
	"github.com/arbicart/backend/internal/infrastructure/telemetry"
)

// Defaults for ServiceConfig zero values
const (
	DefaultHomeZip         = "14850"
	DefaultMaxItems        = 25
	DefaultComparisonLimit = 5
	DefaultMockTTL         = 15 * time.Minute
	DefaultLiveTTL         = 30 * time.Minute
)

// MockPricer prices items in known ZIPs without network calls
type MockPricer interface {
	PricesForZip(items []string, zip string) (pricing.ZipSnapshot, bool)
	KnownItems() []string
}

// ServiceConfig tunes price resolution
type ServiceConfig struct {
	DefaultZip string
	MaxItems   int
	// ComparisonZips is the comparison set used while a metered live
	// provider is configured. Empty means the first ComparisonLimit known ZIPs.
	ComparisonZips  []string
	ComparisonLimit int
	MockTTL         time.Duration
	LiveTTL         time.Duration
}

func (c *ServiceConfig) applyDefaults() {
	if c.DefaultZip == "" {
		c.DefaultZip = DefaultHomeZip
	}
	if c.MaxItems <= 0 {
		c.MaxItems = DefaultMaxItems
	}
	if c.ComparisonLimit <= 0 {
		c.ComparisonLimit = DefaultComparisonLimit
	}
	if c.MockTTL <= 0 {
		c.MockTTL = DefaultMockTTL
	}
	if c.LiveTTL <= 0 {
		c.LiveTTL = DefaultLiveTTL
	}
}

// PriceService resolves basket prices: response cache, then live providers
// for the home ZIP, then the mock model. With a dataset store it serves the
// pre-scraped snapshot instead and never calls providers.
type PriceService struct {
	config    ServiceConfig
	mock      MockPricer
	cache     pricing.ResponseCache
	providers []pricing.PriceProvider
	dataset   pricing.DatasetStore
	metrics   *telemetry.PriceMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// ServiceOption is a functional option for PriceService
type ServiceOption func(*PriceService)

// WithProviders sets the live providers in priority order
func WithProviders(providers ...pricing.PriceProvider) ServiceOption {
	return func(s *PriceService) {
		s.providers = providers
	}
}

// WithDataset switches the service to pre-scraped mode. A nil store is ignored.
func WithDataset(store pricing.DatasetStore) ServiceOption {
	return func(s *PriceService) {
		s.dataset = store
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m *telemetry.PriceMetrics) ServiceOption {
	return func(s *PriceService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *PriceService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) ServiceOption {
	return func(s *PriceService) {
		s.now = now
	}
}

// NewPriceService creates a PriceService
func NewPriceService(cfg ServiceConfig, mock MockPricer, cache pricing.ResponseCache, opts ...ServiceOption) *PriceService {
	cfg.applyDefaults()
	s := &PriceService{
		config:  cfg,
		mock:    mock,
		cache:   cache,
		metrics: telemetry.NewNoopPriceMetrics(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode names where responses come from: the dataset, the first configured
// live provider, or the mock model.
func (s *PriceService) Mode() pricing.Source {
	if s.dataset != nil {
		return pricing.SourcePreScraped
	}
	for _, p := range s.providers {
		if p.Configured() {
			return p.Source()
		}
	}
	return pricing.SourceMock
}

// Resolve prices the basket in q across the home ZIP and its comparison ZIPs.
// Errors are *pricing.RequestError values.
func (s *PriceService) Resolve(ctx context.Context, q PriceQuery) (*PriceResponse, error) {
	started := s.now()

	items := pricing.NormalizeItems(q.Items)
	if len(items) == 0 {
		return nil, pricing.NewValidationError("No items provided")
	}
	if len(items) > s.config.MaxItems {
		return nil, pricing.NewValidationError(fmt.Sprintf("Too many items: at most %d per request", s.config.MaxItems))
	}

	homeZip := strings.TrimSpace(q.Zip)
	if homeZip == "" {
		homeZip = s.config.DefaultZip
	}
	if !pricing.IsZipFormat(homeZip) {
		return nil, pricing.NewValidationError("ZIP must be 5 digits")
	}
	compare, err := normalizeCompare(q.Compare)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "pricing.Resolve",
		telemetry.SpanAttrZip, homeZip,
		telemetry.SpanAttrItemCount, len(items),
	)
	defer span.End()

	log := s.logger.With(zap.String("zip", homeZip), zap.Strings("items", items))
	if id := logger.GetRequestID(ctx); id != "" {
		log = log.With(zap.String("request_id", id))
	}

	address := ""
	if s.dataset == nil && s.Mode().IsLive() {
		address = q.Address
	}
	key := cacheKey(homeZip, items, compare, address)
	if cached, ok := s.cache.Get(ctx, key); ok {
		s.metrics.RecordCacheLookup(ctx, true)
		s.metrics.RecordDuration(ctx, s.now().Sub(started), cached.Source.String())
		telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, true, telemetry.SpanAttrSource, cached.Source.String())
		log.Debug("Price cache hit", zap.String("key", key))
		return ToPriceResponse(cached, true), nil
	}
	s.metrics.RecordCacheLookup(ctx, false)
	telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, false)

	var resp *pricing.PriceResponse
	if s.dataset != nil {
		resp, err = s.resolveFromDataset(ctx, homeZip, items, compare)
	} else {
		resp, err = s.resolveLive(ctx, span, homeZip, items, q.Address, compare, log)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Price resolution failed", zap.Error(err))
		return nil, err
	}

	resp.Savings = pricing.ComputeSavings(resp)

	ttl := s.config.MockTTL
	if resp.Source.IsLive() {
		ttl = s.config.LiveTTL
	}
	if err := s.cache.Set(ctx, key, resp, ttl); err != nil {
		log.Warn("Failed to cache price response", zap.String("key", key), zap.Error(err))
	}

	elapsed := s.now().Sub(started)
	s.metrics.RecordResolution(ctx, resp.Source.String())
	s.metrics.RecordDuration(ctx, elapsed, resp.Source.String())
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSource, resp.Source.String(),
		telemetry.SpanAttrZipCount, resp.ZipsReturned(),
	)
	log.Info("Prices resolved",
		zap.String("source", resp.Source.String()),
		zap.Int("zips_returned", resp.ZipsReturned()),
		zap.Duration("duration", elapsed),
	)
	return ToPriceResponse(resp, false), nil
}

// resolveLive prices the home ZIP from the first provider that finds
// anything, falling back to the mock model, and mocks every comparison ZIP.
func (s *PriceService) resolveLive(ctx context.Context, span trace.Span, homeZip string, items []string, address string, compare []string, log *zap.Logger) (*pricing.PriceResponse, error) {
	resp := &pricing.PriceResponse{
		HomeZip:    homeZip,
		Items:      items,
		Source:     pricing.SourceMock,
		ResolvedAt: s.now().UTC(),
	}

	liveConfigured := s.Mode().IsLive()
	var failures []error
	homeResolved := false

	for _, p := range s.providers {
		out := p.Search(ctx, items, homeZip, address)
		s.metrics.RecordProviderOutcome(ctx, p.Source().String(), out.Kind.String())

		switch out.Kind {
		case pricing.OutcomeFound:
			snap := s.liveSnapshot(homeZip, out.Items)
			if resp.AddSnapshot(homeZip, snap) {
				resp.Source = p.Source()
				homeResolved = true
			}
		case pricing.OutcomeAbstained:
			log.Debug("Provider abstained", zap.String("provider", p.Source().String()), zap.Error(out.Err))
			telemetry.AddEvent(span, "provider.skipped",
				telemetry.SpanAttrProvider, p.Source().String(), telemetry.SpanAttrOutcome, out.Kind.String())
		case pricing.OutcomeFailed:
			log.Warn("Provider failed", zap.String("provider", p.Source().String()), zap.Error(out.Err))
			telemetry.AddEvent(span, "provider.skipped",
				telemetry.SpanAttrProvider, p.Source().String(), telemetry.SpanAttrOutcome, out.Kind.String())
			failures = append(failures, fmt.Errorf("%s: %w", p.Source(), out.Err))
		}
		if homeResolved {
			break
		}
	}

	if !homeResolved {
		if snap, ok := s.mock.PricesForZip(items, homeZip); ok {
			resp.AddSnapshot(homeZip, snap)
		}
	}

	for _, zip := range s.zipOrder(homeZip, compare, liveConfigured)[1:] {
		if snap, ok := s.mock.PricesForZip(items, zip); ok {
			resp.AddSnapshot(zip, snap)
		}
	}

	if resp.ZipsReturned() == 0 {
		if liveConfigured && len(failures) > 0 {
			return nil, pricing.NewUpstreamError(errors.Join(failures...))
		}
		return nil, pricing.NewNotFoundError(s.mock.KnownItems())
	}
	return resp, nil
}

// liveSnapshot labels provider prices with the ZIP's reference data when
// the ZIP is known, else with the store of the first priced item.
func (s *PriceService) liveSnapshot(zip string, items map[string]pricing.PricedItem) pricing.ZipSnapshot {
	if rec, ok := pricing.LookupZip(zip); ok {
		return pricing.NewZipSnapshotForRecord(rec, "", items)
	}
	store := pricing.DefaultStoreName
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if items[name].Store != "" {
			store = items[name].Store
			break
		}
	}
	return pricing.NewZipSnapshot(zip, 0, 0, 0, store, items)
}

// zipOrder is the home ZIP followed by the comparison ZIPs: the explicit
// list when given, a small subset while a metered provider is configured,
// else every known ZIP.
func (s *PriceService) zipOrder(homeZip string, compare []string, metered bool) []string {
	switch {
	case len(compare) > 0:
		return pricing.ZipOrder(homeZip, compare)
	case metered && len(s.config.ComparisonZips) > 0:
		return pricing.ZipOrder(homeZip, s.config.ComparisonZips)
	case metered:
		return pricing.ZipOrder(homeZip, pricing.DefaultComparisonZips(homeZip, s.config.ComparisonLimit))
	default:
		return pricing.ZipOrder(homeZip, nil)
	}
}

func (s *PriceService) resolveFromDataset(ctx context.Context, homeZip string, items, compare []string) (*pricing.PriceResponse, error) {
	ds, err := s.loadDataset(ctx)
	if err != nil {
		return nil, err
	}

	resp := &pricing.PriceResponse{
		HomeZip:    homeZip,
		Items:      items,
		Source:     pricing.SourcePreScraped,
		ResolvedAt: s.now().UTC(),
	}
	if !ds.ScrapedAt.IsZero() {
		scrapedAt := ds.ScrapedAt.UTC()
		resp.ScrapedAt = &scrapedAt
	}

	zips := ds.Zips(homeZip)
	if len(compare) > 0 {
		zips = pricing.ZipOrder(homeZip, compare)
	}
	for _, zip := range zips {
		if snap, ok := ds.Snapshot(zip, items); ok {
			resp.AddSnapshot(zip, snap)
		}
	}

	if resp.ZipsReturned() == 0 {
		return nil, pricing.NewNotFoundError(ds.ItemsSearched)
	}
	return resp, nil
}

func (s *PriceService) loadDataset(ctx context.Context) (*pricing.Dataset, error) {
	ds, err := s.dataset.Load(ctx)
	if err != nil {
		if errors.Is(err, pricing.ErrDatasetNotFound) {
			return nil, pricing.NewDatasetMissingError(err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		return nil, pricing.NewInternalError(err)
	}
	return ds, nil
}

// AvailableItems lists the items the service can price: the dataset's
// searched items in pre-scraped mode, else the mock model's table.
func (s *PriceService) AvailableItems(ctx context.Context) ([]string, error) {
	if s.dataset == nil {
		return s.mock.KnownItems(), nil
	}
	ds, err := s.loadDataset(ctx)
	if err != nil {
		return nil, err
	}
	items := slices.Clone(ds.ItemsSearched)
	slices.Sort(items)
	return items, nil
}

// Zips returns the reference ZIP table
func (s *PriceService) Zips() []ZipResponse {
	return ToZipResponses(pricing.KnownZips())
}

func normalizeCompare(raw []string) ([]string, error) {
	var out []string
	for _, z := range raw {
		z = strings.TrimSpace(z)
		if z == "" {
			continue
		}
		if !pricing.IsZipFormat(z) {
			return nil, pricing.NewValidationError(fmt.Sprintf("Comparison ZIP %q must be 5 digits", z))
		}
		if !slices.Contains(out, z) {
			out = append(out, z)
		}
	}
	return out, nil
}

// cacheKey extends the basket key with an explicit comparison set so a
// restricted comparison never serves a full one, and with the search
// address live providers were given.
func cacheKey(homeZip string, items, compare []string, address string) string {
	key := pricing.CacheKey(homeZip, items)
	if len(compare) > 0 {
		sorted := slices.Clone(compare)
		slices.Sort(sorted)
		key += ":vs=" + strings.Join(sorted, ",")
	}
	if addr := strings.ToLower(strings.Join(strings.Fields(address), " ")); addr != "" {
		key += ":at=" + addr
	}
	return key
}
