package ecommerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/arbicart/backend/internal/domain/pricing"
)

// ScraperClient prices items by running a hosted scraping actor once per
// item and reading back its dataset.
type ScraperClient struct {
	config     *ScraperConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// ScraperOption is a functional option for ScraperClient
type ScraperOption func(*ScraperClient)

// WithScraperHTTPClient replaces the HTTP client
func WithScraperHTTPClient(c *http.Client) ScraperOption {
	return func(sc *ScraperClient) {
		sc.httpClient = c
	}
}

// WithScraperLogger sets the logger
func WithScraperLogger(l *zap.Logger) ScraperOption {
	return func(sc *ScraperClient) {
		sc.logger = l
	}
}

// NewScraperClient creates a client. A missing token makes it abstain.
func NewScraperClient(config *ScraperConfig, opts ...ScraperOption) *ScraperClient {
	if config == nil {
		config = NewScraperConfig("")
	}
	config.applyDefaults()
	c := &ScraperClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source identifies this provider
func (c *ScraperClient) Source() pricing.Source {
	return pricing.SourceScraper
}

// Configured reports whether the client has usable credentials
func (c *ScraperClient) Configured() bool {
	return c.config.Validate() == nil
}

// Search runs one actor per item with bounded parallelism
func (c *ScraperClient) Search(ctx context.Context, items []string, zip, address string) pricing.ProviderOutcome {
	if err := c.config.Validate(); err != nil {
		return pricing.Abstained(fmt.Errorf("%w: %v", pricing.ErrProviderNotConfigured, err))
	}
	address = pricing.SearchAddress(zip, address)

	result := searchAll(ctx, items, c.config.BatchWidth, func(ctx context.Context, item string) (pricing.PricedItem, error) {
		return c.SearchItem(ctx, item, zip, address)
	}, c.logger)

	if len(result.Failures) > 0 {
		c.logger.Warn("scraper search had failures",
			zap.String("zip", zip),
			zap.Int("priced", len(result.Items)),
			zap.Int("failed", len(result.Failures)),
			zap.Error(result.Err()),
		)
	}
	return outcomeOf(result)
}

// SearchItem runs the actor for one item and returns the cheapest
// positive-priced product it found.
func (c *ScraperClient) SearchItem(ctx context.Context, item, zip, address string) (pricing.PricedItem, error) {
	if err := c.config.Validate(); err != nil {
		return pricing.PricedItem{}, fmt.Errorf("%w: %v", pricing.ErrProviderNotConfigured, err)
	}

	datasetID, err := c.runActor(ctx, item, zip, address)
	if err != nil {
		return pricing.PricedItem{}, fmt.Errorf("scraper: search %q: %w", item, err)
	}

	products, err := c.datasetItems(ctx, datasetID)
	if err != nil {
		return pricing.PricedItem{}, fmt.Errorf("scraper: search %q: %w", item, err)
	}

	candidates := make([]pricing.PricedItem, 0, len(products))
	for _, p := range products {
		price, ok := p.price()
		if !ok {
			continue
		}
		candidates = append(candidates, pricing.PricedItem{
			Name:  firstNonEmpty(p.Name, item),
			Price: price,
			Unit:  p.unit(),
			Store: firstNonEmpty(p.RetailerName, p.Store, "Instacart"),
			Image: p.ImageURL,
		})
	}

	best, ok := LowestPriced(candidates)
	if !ok {
		return pricing.PricedItem{}, fmt.Errorf("scraper: search %q: %w", item, pricing.ErrProviderNoResults)
	}
	return best, nil
}

func (c *ScraperClient) endpoint(path string, query url.Values) string {
	query.Set("token", c.config.APIToken)
	return strings.TrimRight(c.config.BaseURL, "/") + path + "?" + query.Encode()
}

func (c *ScraperClient) runActor(ctx context.Context, item, zip, address string) (string, error) {
	endpoint := c.endpoint("/acts/"+url.PathEscape(c.config.ActorID)+"/runs", url.Values{
		"waitForFinish": {strconv.Itoa(c.config.WaitSeconds)},
	})
	input := scraperRunInput{
		PostalCode:    zip,
		StreetAddress: address,
		SearchQuery:   item,
	}

	var run scraperRunResponse
	if err := doJSON(ctx, c.httpClient, http.MethodPost, endpoint, nil, input, &run); err != nil {
		return "", err
	}
	if run.Data.Status != ScraperRunSucceeded || run.Data.DefaultDatasetID == "" {
		return "", fmt.Errorf("%w: actor run status %q", pricing.ErrProviderRequestFailed, run.Data.Status)
	}
	return run.Data.DefaultDatasetID, nil
}

func (c *ScraperClient) datasetItems(ctx context.Context, datasetID string) ([]scraperProduct, error) {
	endpoint := c.endpoint("/datasets/"+url.PathEscape(datasetID)+"/items", url.Values{
		"limit": {strconv.Itoa(c.config.DatasetLimit)},
	})

	var products []scraperProduct
	if err := doJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

var _ pricing.PriceProvider = (*ScraperClient)(nil)
