package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/arbicart/backend/internal/domain/pricing"
)

// StaticBuilder bakes a dataset-backed price response into a JSON file
// the client can load without a backend.
type StaticBuilder struct {
	service    *PriceService
	outputPath string
	logger     *zap.Logger
}

// NewStaticBuilder creates a builder. service must be in pre-scraped mode.
func NewStaticBuilder(service *PriceService, outputPath string, logger *zap.Logger) *StaticBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaticBuilder{service: service, outputPath: outputPath, logger: logger}
}

// Build resolves items for homeZip from the dataset and writes the response
// to the output path. Empty items means every item the dataset searched.
func (b *StaticBuilder) Build(ctx context.Context, items []string, homeZip string) (*PriceResponse, error) {
	if b.service.Mode() != pricing.SourcePreScraped {
		return nil, fmt.Errorf("static build needs a dataset store")
	}
	if len(items) == 0 {
		available, err := b.service.AvailableItems(ctx)
		if err != nil {
			return nil, err
		}
		items = available
	}

	resp, err := b.service.Resolve(ctx, PriceQuery{Items: items, Zip: homeZip})
	if err != nil {
		return nil, err
	}
	resp.Cached = false

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode static prices: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(b.outputPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write static prices: %w", err)
	}

	b.logger.Info("Static prices written",
		zap.String("path", b.outputPath),
		zap.Int("zips", resp.ZipsReturned),
		zap.String("items", strings.Join(resp.Items, ",")),
	)
	return resp, nil
}
