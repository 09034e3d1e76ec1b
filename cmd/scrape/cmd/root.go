// Package cmd provides the commands of the scrape CLI.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arbicart/backend/internal/domain/pricing"
	"github.com/arbicart/backend/internal/infrastructure/config"
	"github.com/arbicart/backend/internal/infrastructure/dataset"
	"github.com/arbicart/backend/internal/infrastructure/logger"
)

// ConfigLoader loads the application configuration
type ConfigLoader func() (*config.Config, error)

// runtime carries what the root command prepares for its subcommands
type runtime struct {
	cfg *config.Config
	log *zap.Logger
}

// Execute runs the CLI with configuration from files and environment
func Execute() error {
	return NewRootCmd(config.Load).Execute()
}

// NewRootCmd builds the command tree
func NewRootCmd(load ConfigLoader) *cobra.Command {
	rt := &runtime{}
	var verbose bool

	root := &cobra.Command{
		Use:   "scrape",
		Short: "Maintain the pre-scraped grocery price dataset",
		Long: `scrape keeps the price dataset served in pre-scraped mode up to date.

Examples:
  scrape run                      # scrape ZIPs with too little data
  scrape run --force --zips 14850 # rescrape one ZIP
  scrape run --dry-run            # show the plan and its cost
  scrape build-static --zip 14850 # write the client data file`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if verbose {
				cfg.Log.Level = "debug"
			}
			log, err := logger.New(&logger.Config{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				Output: cfg.Log.Output,
			})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			rt.cfg, rt.log = cfg, log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if rt.log != nil {
				_ = rt.log.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCmd(rt))
	root.AddCommand(newBuildStaticCmd(rt))
	return root
}

// datasetStore returns the configured store. With dataset mode off the
// CLI still works against the local file at dataset.path.
func (rt *runtime) datasetStore(ctx context.Context) (pricing.DatasetStore, error) {
	store, err := dataset.NewStore(ctx, rt.cfg.Dataset, rt.log)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return dataset.NewFileStore(rt.cfg.Dataset.Path, rt.log), nil
	}
	return store, nil
}
