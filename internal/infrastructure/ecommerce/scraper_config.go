package ecommerce

import (
	"errors"
	"net/url"
	"time"
)

const (
	// ScraperProductionAPIURL is the hosted actor platform API base
	ScraperProductionAPIURL = "https://api.apify.com/v2"
	// DefaultScraperActor is the grocery scraping actor
	DefaultScraperActor = "rigelbytes~instacart-scraper"
)

// Errors for scraper configuration
var (
	ErrScraperConfigMissingToken = errors.New("scraper: api token is required")
	ErrScraperConfigMissingActor = errors.New("scraper: actor id is required")
	ErrScraperConfigInvalidURL   = errors.New("scraper: invalid base url")
)

// ScraperConfig holds configuration for the hosted scraping actor
type ScraperConfig struct {
	// APIToken authenticates actor runs and dataset reads
	APIToken string
	// BaseURL is the platform API root
	BaseURL string
	// ActorID names the actor to run
	ActorID string
	// WaitSeconds is how long a run call blocks for the actor to finish
	WaitSeconds int
	// DatasetLimit caps the products read back per run
	DatasetLimit int
	// BatchWidth is the number of concurrent actor runs
	BatchWidth int
	// Timeout bounds one HTTP call; it must exceed WaitSeconds
	Timeout time.Duration
}

// NewScraperConfig creates a configuration with defaults
func NewScraperConfig(apiToken string) *ScraperConfig {
	c := &ScraperConfig{APIToken: apiToken}
	c.applyDefaults()
	return c
}

func (c *ScraperConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = ScraperProductionAPIURL
	}
	if c.ActorID == "" {
		c.ActorID = DefaultScraperActor
	}
	if c.WaitSeconds <= 0 {
		c.WaitSeconds = 180
	}
	if c.DatasetLimit <= 0 {
		c.DatasetLimit = 10
	}
	if c.BatchWidth <= 0 {
		c.BatchWidth = DefaultBatchWidth
	}
	if c.Timeout <= 0 {
		c.Timeout = time.Duration(c.WaitSeconds+20) * time.Second
	}
}

// Validate fills defaults and checks that the client can make calls
func (c *ScraperConfig) Validate() error {
	c.applyDefaults()
	if c.APIToken == "" {
		return ErrScraperConfigMissingToken
	}
	if c.ActorID == "" {
		return ErrScraperConfigMissingActor
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return ErrScraperConfigInvalidURL
	}
	return nil
}
