package ecommerce

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/arbicart/backend/internal/domain/pricing"
)

// CommerceClient searches the commerce catalog API for item prices
type CommerceClient struct {
	config     *CommerceConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// CommerceOption is a functional option for CommerceClient
type CommerceOption func(*CommerceClient)

// WithCommerceHTTPClient replaces the HTTP client
func WithCommerceHTTPClient(c *http.Client) CommerceOption {
	return func(cc *CommerceClient) {
		cc.httpClient = c
	}
}

// WithCommerceLogger sets the logger
func WithCommerceLogger(l *zap.Logger) CommerceOption {
	return func(cc *CommerceClient) {
		cc.logger = l
	}
}

// NewCommerceClient creates a client. A missing API key is not an error:
// the client then abstains from every search.
func NewCommerceClient(config *CommerceConfig, opts ...CommerceOption) *CommerceClient {
	if config == nil {
		config = NewCommerceConfig("")
	}
	config.applyDefaults()
	c := &CommerceClient{
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
func (c *CommerceClient) Source() pricing.Source {
	return pricing.SourceCommerceAPI
}

// Configured reports whether the client has usable credentials
func (c *CommerceClient) Configured() bool {
	return c.config.Validate() == nil
}

// Search prices every item near address, settling each item independently.
func (c *CommerceClient) Search(ctx context.Context, items []string, zip, address string) pricing.ProviderOutcome {
	if err := c.config.Validate(); err != nil {
		return pricing.Abstained(fmt.Errorf("%w: %v", pricing.ErrProviderNotConfigured, err))
	}
	address = pricing.SearchAddress(zip, address)

	result := searchAll(ctx, items, c.config.BatchWidth, func(ctx context.Context, item string) (pricing.PricedItem, error) {
		return c.SearchItem(ctx, item, address)
	}, c.logger)

	if len(result.Failures) > 0 {
		c.logger.Warn("commerce search had failures",
			zap.String("zip", zip),
			zap.Int("priced", len(result.Items)),
			zap.Int("failed", len(result.Failures)),
			zap.Error(result.Err()),
		)
	}
	return outcomeOf(result)
}

// SearchItem returns the cheapest positive-priced candidate for one item
func (c *CommerceClient) SearchItem(ctx context.Context, item, address string) (pricing.PricedItem, error) {
	url := strings.TrimRight(c.config.BaseURL, "/") + CommerceSearchPath
	headers := map[string]string{"Authorization": "Bearer " + c.config.APIKey}
	body := commerceSearchRequest{
		Query:    item,
		Location: commerceLocation{AddressLine1: address},
		Limit:    c.config.ResultLimit,
	}

	var resp commerceSearchResponse
	if err := doJSON(ctx, c.httpClient, http.MethodPost, url, headers, body, &resp); err != nil {
		return pricing.PricedItem{}, fmt.Errorf("commerce: search %q: %w", item, err)
	}

	products := resp.candidates()
	if len(products) > c.config.Candidates {
		products = products[:c.config.Candidates]
	}

	candidates := make([]pricing.PricedItem, 0, len(products))
	for _, p := range products {
		price, ok := ExtractPrice(p.Price)
		if !ok {
			price, ok = ExtractPrice(p.UnitPrice)
		}
		if !ok {
			continue
		}
		candidates = append(candidates, pricing.PricedItem{
			Name:  firstNonEmpty(p.Name, p.Title, item),
			Price: price,
			Unit:  firstNonEmpty(p.Unit, p.Size, "each"),
			Store: firstNonEmpty(p.RetailerName, p.Store, "Instacart"),
			Image: firstNonEmpty(p.ImageURL, p.Thumbnail),
		})
	}

	best, ok := LowestPriced(candidates)
	if !ok {
		return pricing.PricedItem{}, fmt.Errorf("commerce: search %q: %w", item, pricing.ErrProviderNoResults)
	}
	return best, nil
}

var _ pricing.PriceProvider = (*CommerceClient)(nil)
