package dataset

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/arbicart/backend/internal/domain/pricing"
	infraconfig "github.com/arbicart/backend/internal/infrastructure/config"
)

// NewStore builds the store selected by cfg.Mode. Mode "off" yields a nil
// store, which turns dataset mode off in the price service.
func NewStore(ctx context.Context, cfg infraconfig.DatasetConfig, logger *zap.Logger) (pricing.DatasetStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Mode {
	case "", infraconfig.DatasetModeOff:
		return nil, nil
	case infraconfig.DatasetModeFile:
		return NewFileStore(cfg.Path, logger), nil
	case infraconfig.DatasetModeS3:
		return NewS3Store(ctx, &cfg.S3, WithS3Logger(logger))
	default:
		return nil, fmt.Errorf("unknown dataset mode %q", cfg.Mode)
	}
}
