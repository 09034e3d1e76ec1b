package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apppricing "github.com/arbicart/backend/internal/application/pricing"
	"github.com/arbicart/backend/internal/domain/pricing"
	"github.com/arbicart/backend/internal/infrastructure/ecommerce"
)

type runOptions struct {
	items   []string
	zips    []string
	force   bool
	dryRun  bool
	timeout time.Duration
}

func newRunCmd(rt *runtime) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape ZIPs that lack data and merge them into the dataset",
		Long: `Runs the hosted scraping actor once per item for every target ZIP that
has fewer than three priced items, then saves the merged dataset.

Each actor run is billed, so the estimated cost is printed first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd.Context(), rt, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVar(&opts.items, "items", nil, "items to search (default milk,eggs,bread,butter,rice)")
	cmd.Flags().StringSliceVar(&opts.zips, "zips", nil, "ZIPs to scrape (default every reference ZIP with an address)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "rescrape ZIPs that already have enough data")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the plan without scraping")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Hour, "overall time limit")
	return cmd
}

func runScrape(ctx context.Context, rt *runtime, opts *runOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	targets, err := scrapeTargets(opts.zips)
	if err != nil {
		return err
	}
	store, err := rt.datasetStore(ctx)
	if err != nil {
		return err
	}
	scraper := ecommerce.NewScraperFromConfig(rt.cfg.Providers.Scraper, rt.log.Named("scraper"))

	job := apppricing.NewScrapeJob(apppricing.ScrapeJobConfig{
		Items:   opts.items,
		Targets: targets,
		Force:   opts.force,
	}, scraper, store, rt.log)

	if opts.dryRun {
		_, todo, skipped, err := job.Plan(ctx)
		if err != nil {
			return err
		}
		items := job.Items()
		low, high := apppricing.EstimateScrapeCost(len(todo) * len(items))
		fmt.Fprintf(out, "Would scrape %d ZIPs x %d items = %d actor runs (~$%s-$%s)\n",
			len(todo), len(items), len(todo)*len(items), low.StringFixed(2), high.StringFixed(2))
		for _, t := range todo {
			fmt.Fprintf(out, "  scrape %s  %s\n", t.Zip, t.Address)
		}
		if len(skipped) > 0 {
			fmt.Fprintf(out, "Skipping %s (already have data)\n", strings.Join(skipped, ", "))
		}
		return nil
	}

	if err := ensureBucket(ctx, store); err != nil {
		return err
	}
	report, err := job.Run(ctx)
	if err != nil {
		return err
	}
	printReport(out, report)
	return nil
}

// bucketEnsurer is implemented by stores backed by a bucket that may not
// exist yet.
type bucketEnsurer interface {
	EnsureBucket(ctx context.Context) error
}

// ensureBucket prepares object storage before any billed actor run starts.
func ensureBucket(ctx context.Context, store pricing.DatasetStore) error {
	eb, ok := store.(bucketEnsurer)
	if !ok {
		return nil
	}
	if err := eb.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("prepare dataset bucket: %w", err)
	}
	return nil
}

// scrapeTargets resolves --zips against the reference table
func scrapeTargets(zips []string) ([]apppricing.ScrapeTarget, error) {
	var targets []apppricing.ScrapeTarget
	for _, zip := range zips {
		zip = strings.TrimSpace(zip)
		if zip == "" {
			continue
		}
		if _, ok := pricing.LookupZip(zip); !ok {
			return nil, fmt.Errorf("unknown ZIP %q", zip)
		}
		targets = append(targets, apppricing.ScrapeTarget{Zip: zip, Address: pricing.SearchAddress(zip, "")})
	}
	return targets, nil
}

func printReport(out io.Writer, r *apppricing.ScrapeReport) {
	fmt.Fprintf(out, "Run %s: %d actor runs (~$%s-$%s) in %s\n",
		r.RunID, r.ActorRuns, r.EstimatedLow.StringFixed(2), r.EstimatedHigh.StringFixed(2),
		r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	for _, z := range r.Scraped {
		fmt.Fprintf(out, "  %s  %d items  $%s  (%d failed)\n", z.Zip, z.ItemCount, z.BasketTotal.StringFixed(2), z.Failures)
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped %s\n", strings.Join(r.Skipped, ", "))
	}
	fmt.Fprintf(out, "Dataset now covers %d ZIPs\n", r.ZipCount)
}
