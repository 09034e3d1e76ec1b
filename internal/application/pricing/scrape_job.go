package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arbicart/backend/internal/domain/pricing"
)

// DefaultScrapeItems is the basket scraped when none is given
var DefaultScrapeItems = []string{"milk", "eggs", "bread", "butter", "rice"}

// DefaultSkipThreshold is the item count at which a ZIP counts as scraped
const DefaultSkipThreshold = 3

// Per actor-run cost range used for the budget estimate
var (
	runCostLow  = decimal.RequireFromString("0.05")
	runCostHigh = decimal.RequireFromString("0.10")
)

// ItemScraper prices one item at one address
type ItemScraper interface {
	Configured() bool
	SearchItem(ctx context.Context, item, zip, address string) (pricing.PricedItem, error)
}

// ScrapeTarget is a ZIP to scrape and the street address to search from
type ScrapeTarget struct {
	Zip     string
	Address string
}

// DefaultScrapeTargets returns every reference ZIP that has an address on file
func DefaultScrapeTargets() []ScrapeTarget {
	var out []ScrapeTarget
	for _, rec := range pricing.KnownZips() {
		if rec.Address != "" {
			out = append(out, ScrapeTarget{Zip: rec.Zip, Address: rec.Address})
		}
	}
	return out
}

// ScrapeJobConfig selects what the job scrapes
type ScrapeJobConfig struct {
	Items         []string
	Targets       []ScrapeTarget
	SkipThreshold int
	// Force rescrapes ZIPs that already meet SkipThreshold
	Force bool
}

// ScrapeZipResult summarizes one scraped ZIP
type ScrapeZipResult struct {
	Zip         string
	ItemCount   int
	BasketTotal decimal.Decimal
	Failures    int
}

// ScrapeReport summarizes one run of the job
type ScrapeReport struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	Scraped       []ScrapeZipResult
	Skipped       []string
	ActorRuns     int
	EstimatedLow  decimal.Decimal
	EstimatedHigh decimal.Decimal
	ZipCount      int
}

// ScrapeJob refreshes the pre-scraped dataset. It only scrapes ZIPs with
// too little data, one item at a time, and merges results into the stored
// dataset.
type ScrapeJob struct {
	config  ScrapeJobConfig
	scraper ItemScraper
	store   pricing.DatasetStore
	logger  *zap.Logger
	now     func() time.Time
}

// NewScrapeJob creates a ScrapeJob
func NewScrapeJob(cfg ScrapeJobConfig, scraper ItemScraper, store pricing.DatasetStore, logger *zap.Logger) *ScrapeJob {
	if len(cfg.Items) == 0 {
		cfg.Items = DefaultScrapeItems
	}
	cfg.Items = pricing.NormalizeItems(cfg.Items)
	if len(cfg.Targets) == 0 {
		cfg.Targets = DefaultScrapeTargets()
	}
	if cfg.SkipThreshold <= 0 {
		cfg.SkipThreshold = DefaultSkipThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScrapeJob{config: cfg, scraper: scraper, store: store, logger: logger, now: time.Now}
}

// Items returns the normalized items each ZIP is searched for
func (j *ScrapeJob) Items() []string {
	return j.config.Items
}

// EstimateScrapeCost returns the billing range for the given number of
// actor runs.
func EstimateScrapeCost(runs int) (low, high decimal.Decimal) {
	n := decimal.NewFromInt(int64(runs))
	return runCostLow.Mul(n), runCostHigh.Mul(n)
}

// Plan loads the current dataset and splits targets into those to scrape
// and those to skip.
func (j *ScrapeJob) Plan(ctx context.Context) (*pricing.Dataset, []ScrapeTarget, []string, error) {
	ds, err := j.store.Load(ctx)
	if errors.Is(err, pricing.ErrDatasetNotFound) {
		ds, err = pricing.NewDataset(), nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load dataset: %w", err)
	}

	var todo []ScrapeTarget
	var skipped []string
	for _, t := range j.config.Targets {
		if dz, ok := ds.PricesByZip[t.Zip]; ok && !j.config.Force && dz.ItemCount() >= j.config.SkipThreshold {
			skipped = append(skipped, t.Zip)
			continue
		}
		todo = append(todo, t)
	}
	return ds, todo, skipped, nil
}

// Run scrapes every planned ZIP and saves the merged dataset. A ZIP that
// fails entirely is recorded with no items and is picked up again next run.
func (j *ScrapeJob) Run(ctx context.Context) (*ScrapeReport, error) {
	if !j.scraper.Configured() {
		return nil, fmt.Errorf("scrape job: %w", pricing.ErrProviderNotConfigured)
	}

	ds, todo, skipped, err := j.Plan(ctx)
	if err != nil {
		return nil, err
	}

	runs := len(todo) * len(j.config.Items)
	low, high := EstimateScrapeCost(runs)
	report := &ScrapeReport{
		RunID:         uuid.NewString(),
		StartedAt:     j.now().UTC(),
		Skipped:       skipped,
		ActorRuns:     runs,
		EstimatedLow:  low,
		EstimatedHigh: high,
	}
	log := j.logger.With(zap.String("run_id", report.RunID))
	for _, zip := range skipped {
		log.Info("Skipping ZIP with enough data", zap.String("zip", zip))
	}
	log.Info("Scrape started",
		zap.Int("items", len(j.config.Items)),
		zap.Int("zips", len(todo)),
		zap.Int("actor_runs", runs),
		zap.String("estimated_cost", "$"+report.EstimatedLow.StringFixed(2)+"-$"+report.EstimatedHigh.StringFixed(2)),
	)

	for _, target := range todo {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dz, result := j.scrapeZip(ctx, target, log)
		ds.Merge(target.Zip, dz, j.config.Items)
		report.Scraped = append(report.Scraped, result)
	}

	ds.ScrapedAt = j.now().UTC()
	if err := j.store.Save(ctx, ds); err != nil {
		return nil, fmt.Errorf("save dataset: %w", err)
	}

	report.FinishedAt = j.now().UTC()
	report.ZipCount = len(ds.PricesByZip)
	log.Info("Scrape finished",
		zap.Int("zips_scraped", len(report.Scraped)),
		zap.Int("zips_total", report.ZipCount),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

// scrapeZip searches items one at a time to stay inside the actor's rate limit.
func (j *ScrapeJob) scrapeZip(ctx context.Context, target ScrapeTarget, log *zap.Logger) (pricing.DatasetZip, ScrapeZipResult) {
	rec, known := pricing.LookupZip(target.Zip)
	dz := pricing.DatasetZip{
		Store: "Instacart",
		Items: make(map[string]pricing.PricedItem, len(j.config.Items)),
	}
	if known {
		dz.Neighborhood, dz.Lat, dz.Lng = rec.Neighborhood, rec.Lat, rec.Lng
	}

	result := ScrapeZipResult{Zip: target.Zip}
	for _, item := range j.config.Items {
		priced, err := j.scraper.SearchItem(ctx, item, target.Zip, target.Address)
		if err != nil {
			result.Failures++
			log.Warn("Item scrape failed", zap.String("zip", target.Zip), zap.String("item", item), zap.Error(err))
			continue
		}
		if !priced.HasPrice() {
			result.Failures++
			continue
		}
		dz.Items[item] = priced
		if priced.Store != "" {
			dz.Store = priced.Store
		}
	}

	result.ItemCount = dz.ItemCount()
	result.BasketTotal = pricing.BasketTotal(dz.Items)
	log.Info("ZIP scraped",
		zap.String("zip", target.Zip),
		zap.Int("items", result.ItemCount),
		zap.Int("wanted", len(j.config.Items)),
		zap.String("basket_total", result.BasketTotal.StringFixed(2)),
	)
	return dz, result
}
