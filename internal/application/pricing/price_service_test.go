package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arbicart/backend/internal/domain/pricing"
	"github.com/arbicart/backend/internal/domain/shared"
	"github.com/arbicart/backend/internal/infrastructure/cache"
	"github.com/arbicart/backend/internal/infrastructure/logger"
	"github.com/arbicart/backend/internal/infrastructure/mockprice"
)

// ============================================================================
// Mocks
// ============================================================================

// MockPriceProvider is a mock implementation of pricing.PriceProvider
type MockPriceProvider struct {
	mock.Mock
	source     pricing.Source
	configured bool
}

func newMockProvider(source pricing.Source, configured bool) *MockPriceProvider {
	return &MockPriceProvider{source: source, configured: configured}
}

func (m *MockPriceProvider) Source() pricing.Source { return m.source }

func (m *MockPriceProvider) Configured() bool { return m.configured }

func (m *MockPriceProvider) Search(ctx context.Context, items []string, zip, address string) pricing.ProviderOutcome {
	args := m.Called(ctx, items, zip, address)
	return args.Get(0).(pricing.ProviderOutcome)
}

// MockDatasetStore is a mock implementation of pricing.DatasetStore
type MockDatasetStore struct {
	mock.Mock
}

func (m *MockDatasetStore) Load(ctx context.Context) (*pricing.Dataset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Dataset), args.Error(1)
}

func (m *MockDatasetStore) Save(ctx context.Context, d *pricing.Dataset) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

// recordingCache wraps the in-memory cache and counts every access
type recordingCache struct {
	inner *cache.MemoryResponseCache
	mu    sync.Mutex
	gets  int
	ttls  map[string]time.Duration
}

func newRecordingCache() *recordingCache {
	return &recordingCache{inner: cache.NewMemoryResponseCache(), ttls: make(map[string]time.Duration)}
}

func (c *recordingCache) Get(ctx context.Context, key string) (*pricing.PriceResponse, bool) {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	return c.inner.Get(ctx, key)
}

func (c *recordingCache) Set(ctx context.Context, key string, resp *pricing.PriceResponse, ttl time.Duration) error {
	c.mu.Lock()
	c.ttls[key] = ttl
	c.mu.Unlock()
	return c.inner.Set(ctx, key, resp, ttl)
}

func (c *recordingCache) accesses() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gets + len(c.ttls)
}

func (c *recordingCache) ttlFor(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttls[key]
}

// ============================================================================
// Helpers
// ============================================================================

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, cfg ServiceConfig, c pricing.ResponseCache, opts ...ServiceOption) *PriceService {
	t.Helper()
	opts = append([]ServiceOption{
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return NewPriceService(cfg, mockprice.NewModel(), c, opts...)
}

func requireCode(t *testing.T, err error, code string) *pricing.RequestError {
	t.Helper()
	var reqErr *pricing.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, code, reqErr.Code())
	return reqErr
}

func item(price, store string) pricing.PricedItem {
	return pricing.PricedItem{Name: store + " item", Price: decimal.RequireFromString(price), Store: store}
}

func sampleDataset() *pricing.Dataset {
	ds := pricing.NewDataset()
	ds.ScrapedAt = time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	ds.Merge("14850", pricing.DatasetZip{
		Neighborhood: "Ithaca (Downtown)", Lat: 42.444, Lng: -76.5019, Store: "Wegmans",
		Items: map[string]pricing.PricedItem{"milk": item("4.19", "Wegmans"), "eggs": item("3.49", "Wegmans")},
	}, []string{"milk", "eggs"})
	ds.Merge("14882", pricing.DatasetZip{
		Neighborhood: "Lansing", Store: "Tops",
		Items: map[string]pricing.PricedItem{"milk": item("3.69", "Tops")},
	}, []string{"milk", "eggs", "saffron"})
	ds.Merge("14853", pricing.DatasetZip{
		Neighborhood: "Collegetown / Cornell", Store: "Collegetown Market",
		Items: map[string]pricing.PricedItem{"eggs": item("3.99", "Collegetown Market")},
	}, nil)
	return ds
}

// ============================================================================
// Mock mode
// ============================================================================

func TestResolve_MockBasket(t *testing.T) {
	svc := newTestService(t, ServiceConfig{}, newRecordingCache())

	resp, err := svc.Resolve(context.Background(), PriceQuery{Items: []string{"Milk", " eggs ", "milk"}, Zip: "14850"})
	require.NoError(t, err)

	assert.Equal(t, "14850", resp.HomeZip)
	assert.Equal(t, []string{"milk", "eggs"}, resp.Items)
	assert.Equal(t, "mock", resp.Source)
	assert.False(t, resp.Cached)
	assert.Nil(t, resp.ScrapedAt)
	assert.Equal(t, len(pricing.KnownZips()), resp.ZipsReturned)
	assert.Equal(t, "14850", resp.ZipOrder[0])

	for zip, snap := range resp.PricesByZip {
		require.Len(t, snap.Items, 2, zip)
		sum := snap.Items["milk"].Price + snap.Items["eggs"].Price
		assert.InDelta(t, sum, snap.BasketTotal, 0.001, zip)
	}
	home := resp.PricesByZip["14850"]
	assert.Equal(t, "Ithaca (Downtown)", home.Neighborhood)
	assert.Equal(t, "Wegmans Ithaca", home.Store)

	require.NotNil(t, resp.Savings)
	assert.InDelta(t, home.BasketTotal, resp.Savings.HomeTotal, 0.001)
	assert.LessOrEqual(t, resp.Savings.CheapestTotal, resp.Savings.HomeTotal)
	assert.InDelta(t, resp.Savings.PerTrip*4, resp.Savings.Monthly, 0.011)
}

func TestResolve_DefaultZip(t *testing.T) {
	svc := newTestService(t, ServiceConfig{DefaultZip: "14882"}, newRecordingCache())

	resp, err := svc.Resolve(context.Background(), PriceQuery{Items: []string{"bread"}})
	require.NoError(t, err)
	assert.Equal(t, "14882", resp.HomeZip)
	assert.Equal(t, "14882", resp.ZipOrder[0])
}

func TestResolve_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query PriceQuery
		msg   string
	}{
		{"no items", PriceQuery{Zip: "14850"}, "No items provided"},
		{"blank items", PriceQuery{Items: []string{" ", ""}, Zip: "14850"}, "No items provided"},
		{"too many items", PriceQuery{Items: []string{"milk", "eggs", "bread"}}, "Too many items: at most 2 per request"},
		{"bad zip", PriceQuery{Items: []string{"milk"}, Zip: "1485a"}, "ZIP must be 5 digits"},
		{"long zip", PriceQuery{Items: []string{"milk"}, Zip: "148500"}, "ZIP must be 5 digits"},
		{"bad compare", PriceQuery{Items: []string{"milk"}, Compare: []string{"14882", "abc"}}, `Comparison ZIP "abc" must be 5 digits`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newRecordingCache()
			svc := newTestService(t, ServiceConfig{MaxItems: 2}, c)

			resp, err := svc.Resolve(context.Background(), tt.query)
			assert.Nil(t, resp)
			reqErr := requireCode(t, err, shared.CodeValidation)
			assert.Equal(t, tt.msg, reqErr.Err.Message)
			assert.Zero(t, c.accesses(), "validation must happen before any cache access")
		})
	}
}

func TestResolve_UnknownZips(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown home and comparisons", func(t *testing.T) {
		svc := newTestService(t, ServiceConfig{}, newRecordingCache())
		_, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk"}, Zip: "99999", Compare: []string{"99998"}})
		reqErr := requireCode(t, err, shared.CodeNotFound)
		assert.Equal(t, mockprice.NewModel().KnownItems(), reqErr.AvailableItems)
		assert.NotEmpty(t, reqErr.Hint)
	})

	t.Run("unknown home is omitted", func(t *testing.T) {
		svc := newTestService(t, ServiceConfig{}, newRecordingCache())
		resp, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk"}, Zip: "99999"})
		require.NoError(t, err)
		assert.NotContains(t, resp.PricesByZip, "99999")
		assert.NotContains(t, resp.ZipOrder, "99999")
		assert.Equal(t, "99999", resp.HomeZip)
		assert.Nil(t, resp.Savings)
	})

	t.Run("unknown comparison is omitted", func(t *testing.T) {
		svc := newTestService(t, ServiceConfig{}, newRecordingCache())
		resp, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk"}, Zip: "14850", Compare: []string{"99999", "14882"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"14850", "14882"}, resp.ZipOrder)
		assert.Equal(t, 2, resp.ZipsReturned)
	})
}

func TestResolve_CacheHit(t *testing.T) {
	ctx := context.Background()
	c := newRecordingCache()
	commerce := newMockProvider(pricing.SourceCommerceAPI, true)
	commerce.On("Search", mock.Anything, mock.Anything, "14850", "").
		Return(pricing.Found(map[string]pricing.PricedItem{"milk": item("3.79", "Wegmans"), "eggs": item("4.29", "Wegmans")}))
	svc := newTestService(t, ServiceConfig{}, c, WithProviders(commerce))

	first, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk", "eggs"}})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Resolve(ctx, PriceQuery{Items: []string{"EGGS", "milk"}})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.PricesByZip, second.PricesByZip)
	assert.Equal(t, first.Source, second.Source)
	commerce.AssertNumberOfCalls(t, "Search", 1)

	// A restricted comparison has its own key
	third, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk", "eggs"}, Compare: []string{"14882"}})
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, []string{"14850", "14882"}, third.ZipOrder)
	commerce.AssertNumberOfCalls(t, "Search", 2)
}

func TestResolve_CacheKeyedByLiveAddress(t *testing.T) {
	ctx := context.Background()
	commerce := newMockProvider(pricing.SourceCommerceAPI, true)
	commerce.On("Search", mock.Anything, mock.Anything, "14850", mock.Anything).
		Return(pricing.Found(map[string]pricing.PricedItem{"milk": item("3.79", "Wegmans")}))
	svc := newTestService(t, ServiceConfig{}, newRecordingCache(), WithProviders(commerce))

	first, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk"}, Address: "301 E State St"})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	same, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk"}, Address: "301 e state st"})
	require.NoError(t, err)
	assert.True(t, same.Cached)

	other, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk"}, Address: "104 Dryden Rd"})
	require.NoError(t, err)
	assert.False(t, other.Cached)

	commerce.AssertNumberOfCalls(t, "Search", 2)
	commerce.AssertCalled(t, "Search", mock.Anything, []string{"milk"}, "14850", "104 Dryden Rd")
}

func TestResolve_MockModeIgnoresAddressInCache(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, ServiceConfig{}, newRecordingCache())

	_, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk"}, Address: "301 E State St"})
	require.NoError(t, err)
	second, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk"}, Address: "104 Dryden Rd"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
}

func TestResolve_LogsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	svc := NewPriceService(ServiceConfig{}, mockprice.NewModel(), newRecordingCache(), WithLogger(zap.New(core)))

	ctx, _ := logger.WithRequestID(context.Background(), zap.NewNop(), "req-42")
	_, err := svc.Resolve(ctx, PriceQuery{Items: []string{"rice"}})
	require.NoError(t, err)

	entries := logs.FilterMessage("Prices resolved").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "mock", fields["source"])
	assert.Equal(t, "14850", fields["zip"])
}

// ============================================================================
// Live providers
// ============================================================================

func TestResolve_ProviderOrder(t *testing.T) {
	ctx := context.Background()
	c := newRecordingCache()
	commerce := newMockProvider(pricing.SourceCommerceAPI, true)
	commerce.On("Search", mock.Anything, []string{"milk", "eggs"}, "14850", "301 E State St").
		Return(pricing.Found(map[string]pricing.PricedItem{"milk": item("3.79", "Wegmans"), "eggs": item("4.29", "Wegmans")}))
	scraper := newMockProvider(pricing.SourceScraper, true)

	svc := newTestService(t, ServiceConfig{}, c, WithProviders(commerce, scraper))
	assert.Equal(t, pricing.SourceCommerceAPI, svc.Mode())

	resp, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk", "eggs"}, Address: "301 E State St"})
	require.NoError(t, err)

	assert.Equal(t, "commerce-api", resp.Source)
	home := resp.PricesByZip["14850"]
	assert.Equal(t, 3.79, home.Items["milk"].Price)
	assert.Equal(t, 8.08, home.BasketTotal)
	assert.Equal(t, "Ithaca (Downtown)", home.Neighborhood)

	// Metered mode compares against the default subset only
	assert.Equal(t, append([]string{"14850"}, pricing.DefaultComparisonZips("14850", DefaultComparisonLimit)...), resp.ZipOrder)

	commerce.AssertExpectations(t)
	scraper.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, DefaultLiveTTL, c.ttlFor(cacheKey("14850", []string{"milk", "eggs"}, nil, "301 E State St")))
}

func TestResolve_FallsThroughProviders(t *testing.T) {
	commerce := newMockProvider(pricing.SourceCommerceAPI, true)
	commerce.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(pricing.Failed(pricing.ErrProviderRequestFailed))
	scraper := newMockProvider(pricing.SourceScraper, true)
	scraper.On("Search", mock.Anything, mock.Anything, "14850", "").
		Return(pricing.Found(map[string]pricing.PricedItem{"milk": item("3.59", "Instacart")}))

	svc := newTestService(t, ServiceConfig{ComparisonZips: []string{"14882", "14901"}}, newRecordingCache(), WithProviders(commerce, scraper))

	resp, err := svc.Resolve(context.Background(), PriceQuery{Items: []string{"milk", "eggs"}})
	require.NoError(t, err)

	assert.Equal(t, "scraper", resp.Source)
	assert.Equal(t, []string{"14850", "14882", "14901"}, resp.ZipOrder)
	// The scraper priced milk only; the home basket is partial
	assert.Len(t, resp.PricesByZip["14850"].Items, 1)
	commerce.AssertExpectations(t)
	scraper.AssertExpectations(t)
}

func TestResolve_AllProvidersFailFallsBackToMock(t *testing.T) {
	c := newRecordingCache()
	commerce := newMockProvider(pricing.SourceCommerceAPI, true)
	commerce.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(pricing.Failed(pricing.ErrProviderRequestFailed))
	scraper := newMockProvider(pricing.SourceScraper, false)
	scraper.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(pricing.Abstained(pricing.ErrProviderNotConfigured))

	svc := newTestService(t, ServiceConfig{}, c, WithProviders(commerce, scraper))

	resp, err := svc.Resolve(context.Background(), PriceQuery{Items: []string{"milk"}})
	require.NoError(t, err)

	assert.Equal(t, "mock", resp.Source)
	assert.Equal(t, "Wegmans Ithaca", resp.PricesByZip["14850"].Store)
	assert.Equal(t, DefaultComparisonLimit+1, resp.ZipsReturned)
	assert.Equal(t, DefaultMockTTL, c.ttlFor(cacheKey("14850", []string{"milk"}, nil, "")))
	commerce.AssertNumberOfCalls(t, "Search", 1)
	scraper.AssertNumberOfCalls(t, "Search", 1)
}

func TestResolve_SkippedProvidersOnSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	commerce := newMockProvider(pricing.SourceCommerceAPI, true)
	commerce.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(pricing.Failed(pricing.ErrProviderRequestFailed))
	scraper := newMockProvider(pricing.SourceScraper, false)
	scraper.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(pricing.Abstained(pricing.ErrProviderNotConfigured))
	svc := newTestService(t, ServiceConfig{}, newRecordingCache(), WithProviders(commerce, scraper))

	_, err := svc.Resolve(context.Background(), PriceQuery{Items: []string{"milk"}})
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 2)
	assert.Equal(t, "provider.skipped", events[0].Name)
	assert.Contains(t, events[0].Attributes, attribute.String("pricing.provider", "commerce-api"))
	assert.Contains(t, events[0].Attributes, attribute.String("pricing.provider_outcome", "failed"))
	assert.Contains(t, events[1].Attributes, attribute.String("pricing.provider", "scraper"))
	assert.Contains(t, events[1].Attributes, attribute.String("pricing.provider_outcome", "abstained"))
}

func TestResolve_UpstreamUnavailable(t *testing.T) {
	commerce := newMockProvider(pricing.SourceCommerceAPI, true)
	commerce.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(pricing.Failed(pricing.ErrProviderRequestFailed))
	scraper := newMockProvider(pricing.SourceScraper, true)
	scraper.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(pricing.Failed(pricing.ErrProviderNoResults))

	svc := newTestService(t, ServiceConfig{}, newRecordingCache(), WithProviders(commerce, scraper))

	_, err := svc.Resolve(context.Background(), PriceQuery{Items: []string{"milk"}, Zip: "99999", Compare: []string{"99998"}})
	requireCode(t, err, shared.CodeUpstream)
	assert.ErrorIs(t, err, pricing.ErrProviderRequestFailed)
	assert.ErrorIs(t, err, pricing.ErrProviderNoResults)
}

func TestResolve_UnconfiguredProvidersAreNotUpstreamFailures(t *testing.T) {
	commerce := newMockProvider(pricing.SourceCommerceAPI, false)
	commerce.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(pricing.Abstained(pricing.ErrProviderNotConfigured))

	svc := newTestService(t, ServiceConfig{}, newRecordingCache(), WithProviders(commerce))
	assert.Equal(t, pricing.SourceMock, svc.Mode())

	_, err := svc.Resolve(context.Background(), PriceQuery{Items: []string{"milk"}, Zip: "99999", Compare: []string{"99998"}})
	requireCode(t, err, shared.CodeNotFound)
}

func TestResolve_UnknownHomeZipLiveLabel(t *testing.T) {
	scraper := newMockProvider(pricing.SourceScraper, true)
	scraper.On("Search", mock.Anything, mock.Anything, "10001", "").
		Return(pricing.Found(map[string]pricing.PricedItem{
			"milk":  item("5.19", "Fairway"),
			"bread": item("4.99", "Fairway"),
		}))
	svc := newTestService(t, ServiceConfig{}, newRecordingCache(), WithProviders(scraper))

	resp, err := svc.Resolve(context.Background(), PriceQuery{Items: []string{"milk", "bread"}, Zip: "10001"})
	require.NoError(t, err)

	home := resp.PricesByZip["10001"]
	assert.Equal(t, "Fairway", home.Store)
	assert.Equal(t, "10001", home.Neighborhood)
	assert.Equal(t, "10001", resp.ZipOrder[0])
}

// ============================================================================
// Pre-scraped mode
// ============================================================================

func TestResolve_Dataset(t *testing.T) {
	ctx := context.Background()
	store := new(MockDatasetStore)
	store.On("Load", mock.Anything).Return(sampleDataset(), nil)
	commerce := newMockProvider(pricing.SourceCommerceAPI, true)
	c := newRecordingCache()

	svc := newTestService(t, ServiceConfig{}, c, WithDataset(store), WithProviders(commerce))
	assert.Equal(t, pricing.SourcePreScraped, svc.Mode())

	resp, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk", "eggs"}})
	require.NoError(t, err)

	assert.Equal(t, "pre-scraped", resp.Source)
	require.NotNil(t, resp.ScrapedAt)
	assert.True(t, resp.ScrapedAt.Equal(time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)))
	assert.Equal(t, []string{"14850", "14853", "14882"}, resp.ZipOrder)
	assert.Equal(t, 7.68, resp.PricesByZip["14850"].BasketTotal)
	assert.Equal(t, "Tops", resp.PricesByZip["14882"].Store)

	// Partial baskets never count as cheaper
	require.NotNil(t, resp.Savings)
	assert.Equal(t, "14850", resp.Savings.CheapestZip)
	assert.Zero(t, resp.Savings.PerTrip)

	assert.Equal(t, DefaultMockTTL, c.ttlFor(cacheKey("14850", []string{"milk", "eggs"}, nil, "")))
	commerce.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_DatasetCompare(t *testing.T) {
	store := new(MockDatasetStore)
	store.On("Load", mock.Anything).Return(sampleDataset(), nil)
	svc := newTestService(t, ServiceConfig{}, newRecordingCache(), WithDataset(store))

	resp, err := svc.Resolve(context.Background(), PriceQuery{Items: []string{"milk"}, Compare: []string{"14882", "14901"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"14850", "14882"}, resp.ZipOrder)
	require.NotNil(t, resp.Savings)
	assert.Equal(t, "14882", resp.Savings.CheapestZip)
	assert.Equal(t, 0.5, resp.Savings.PerTrip)
	assert.Equal(t, 2.0, resp.Savings.Monthly)
	assert.Equal(t, 11.9, resp.Savings.Percent)
}

func TestResolve_DatasetErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		store := new(MockDatasetStore)
		store.On("Load", mock.Anything).Return(nil, pricing.ErrDatasetNotFound)
		svc := newTestService(t, ServiceConfig{}, newRecordingCache(), WithDataset(store))

		_, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk"}})
		reqErr := requireCode(t, err, shared.CodeDatasetMissing)
		assert.ErrorIs(t, err, pricing.ErrDatasetNotFound)
		assert.NotEmpty(t, reqErr.Hint)
	})

	t.Run("unreadable", func(t *testing.T) {
		store := new(MockDatasetStore)
		store.On("Load", mock.Anything).Return(nil, errors.New("permission denied"))
		svc := newTestService(t, ServiceConfig{}, newRecordingCache(), WithDataset(store))

		_, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk"}})
		requireCode(t, err, shared.CodeInternal)
	})

	t.Run("deadline passes through", func(t *testing.T) {
		store := new(MockDatasetStore)
		store.On("Load", mock.Anything).Return(nil, fmt.Errorf("get object: %w", context.DeadlineExceeded))
		svc := newTestService(t, ServiceConfig{}, newRecordingCache(), WithDataset(store))

		_, err := svc.Resolve(ctx, PriceQuery{Items: []string{"milk"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		var reqErr *pricing.RequestError
		assert.False(t, errors.As(err, &reqErr))
	})

	t.Run("items not scraped", func(t *testing.T) {
		store := new(MockDatasetStore)
		store.On("Load", mock.Anything).Return(sampleDataset(), nil)
		svc := newTestService(t, ServiceConfig{}, newRecordingCache(), WithDataset(store))

		_, err := svc.Resolve(ctx, PriceQuery{Items: []string{"saffron"}})
		reqErr := requireCode(t, err, shared.CodeNotFound)
		assert.ElementsMatch(t, []string{"milk", "eggs", "saffron"}, reqErr.AvailableItems)
	})
}

func TestAvailableItems(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(t, ServiceConfig{}, newRecordingCache())
	items, err := svc.AvailableItems(ctx)
	require.NoError(t, err)
	assert.Contains(t, items, "milk")
	assert.IsIncreasing(t, items)

	store := new(MockDatasetStore)
	store.On("Load", mock.Anything).Return(sampleDataset(), nil)
	svc = newTestService(t, ServiceConfig{}, newRecordingCache(), WithDataset(store))
	items, err = svc.AvailableItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"eggs", "milk", "saffron"}, items)
}

func TestZips(t *testing.T) {
	svc := newTestService(t, ServiceConfig{}, newRecordingCache())
	zips := svc.Zips()
	require.Len(t, zips, len(pricing.KnownZips()))
	assert.Equal(t, "14850", zips[0].Zip)
	assert.Equal(t, 1.0, zips[0].PriceMultiplier)
	assert.Equal(t, "Wegmans Ithaca", zips[0].Store)
}

func TestCacheKey(t *testing.T) {
	base := cacheKey("14850", []string{"milk", "eggs"}, nil, "")
	assert.Equal(t, "prices:14850:eggs,milk", base)
	assert.Equal(t, base+":vs=14853,14882", cacheKey("14850", []string{"eggs", "milk"}, []string{"14882", "14853"}, ""))
	assert.Equal(t, base+":at=301 e state st", cacheKey("14850", []string{"milk", "eggs"}, nil, "  301 E  State St "))
	assert.Equal(t, base, cacheKey("14850", []string{"milk", "eggs"}, nil, "   "))
}
