package ecommerce

import (
	"errors"
	"net/url"
	"time"
)

const (
	// CommerceProductionAPIURL is the production catalog API base
	CommerceProductionAPIURL = "https://connect.instacart.com/v2"
	// CommerceSearchPath is the product search endpoint below the base URL
	CommerceSearchPath = "/fulfillment/catalog/products/search"
)

// Errors for commerce API configuration
var (
	ErrCommerceConfigMissingAPIKey = errors.New("commerce: api key is required")
	ErrCommerceConfigInvalidURL    = errors.New("commerce: invalid base url")
)

// CommerceConfig holds configuration for the commerce catalog search API
type CommerceConfig struct {
	// APIKey is sent as a bearer token
	APIKey string
	// BaseURL is the API root; the search path is appended
	BaseURL string
	// Timeout bounds one HTTP call
	Timeout time.Duration
	// ResultLimit is the number of candidate products requested per item
	ResultLimit int
	// Candidates is how many of the returned products are compared
	Candidates int
	// BatchWidth is the number of concurrent item searches
	BatchWidth int
}

// NewCommerceConfig creates a configuration with defaults
func NewCommerceConfig(apiKey string) *CommerceConfig {
	c := &CommerceConfig{APIKey: apiKey}
	c.applyDefaults()
	return c
}

func (c *CommerceConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = CommerceProductionAPIURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.ResultLimit <= 0 {
		c.ResultLimit = 5
	}
	if c.Candidates <= 0 {
		c.Candidates = 3
	}
	if c.BatchWidth <= 0 {
		c.BatchWidth = DefaultBatchWidth
	}
}

// Validate fills defaults and checks that the client can make calls
func (c *CommerceConfig) Validate() error {
	c.applyDefaults()
	if c.APIKey == "" {
		return ErrCommerceConfigMissingAPIKey
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return ErrCommerceConfigInvalidURL
	}
	return nil
}
