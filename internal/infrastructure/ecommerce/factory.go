package ecommerce

import (
	"go.uber.org/zap"

	"github.com/arbicart/backend/internal/domain/pricing"
	"github.com/arbicart/backend/internal/infrastructure/config"
)

// NewScraperFromConfig builds the scraping actor client from settings.
// An empty token yields a client that abstains.
func NewScraperFromConfig(cfg config.ScraperProviderConfig, logger *zap.Logger) *ScraperClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NewScraperClient(&ScraperConfig{
		APIToken:     cfg.APIToken,
		BaseURL:      cfg.BaseURL,
		ActorID:      cfg.ActorID,
		WaitSeconds:  cfg.WaitSeconds,
		DatasetLimit: cfg.DatasetLimit,
		BatchWidth:   cfg.BatchWidth,
		Timeout:      cfg.Timeout,
	}, WithScraperLogger(logger))
}

// NewCommerceFromConfig builds the catalog search client from settings.
// An empty key yields a client that abstains.
func NewCommerceFromConfig(cfg config.CommerceProviderConfig, logger *zap.Logger) *CommerceClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NewCommerceClient(&CommerceConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		ResultLimit: cfg.ResultLimit,
	}, WithCommerceLogger(logger))
}

// NewProviders returns the live providers in the order they are tried:
// the commerce API, then the scraper.
func NewProviders(cfg config.ProvidersConfig, logger *zap.Logger) []pricing.PriceProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return []pricing.PriceProvider{
		NewCommerceFromConfig(cfg.Commerce, logger.Named("commerce")),
		NewScraperFromConfig(cfg.Scraper, logger.Named("scraper")),
	}
}
