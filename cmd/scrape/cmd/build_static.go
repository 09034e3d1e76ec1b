package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	apppricing "github.com/arbicart/backend/internal/application/pricing"
	"github.com/arbicart/backend/internal/infrastructure/cache"
	"github.com/arbicart/backend/internal/infrastructure/mockprice"
)

// staticMaxItems lifts the per-request item cap: the static file carries
// every item the dataset searched.
const staticMaxItems = 500

type buildStaticOptions struct {
	items []string
	zip   string
	out   string
}

func newBuildStaticCmd(rt *runtime) *cobra.Command {
	opts := &buildStaticOptions{}
	cmd := &cobra.Command{
		Use:   "build-static",
		Short: "Write the client price file from the dataset",
		Long: `Resolves a basket from the pre-scraped dataset exactly as GET /api/prices
would and writes the response as JSON, so the client can run without a backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return buildStatic(cmd.Context(), rt, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVar(&opts.items, "items", nil, "items to include (default every item in the dataset)")
	cmd.Flags().StringVar(&opts.zip, "zip", "", "home ZIP (default pricing.default_zip)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default dataset.output_path)")
	return cmd
}

func buildStatic(ctx context.Context, rt *runtime, opts *buildStaticOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := rt.datasetStore(ctx)
	if err != nil {
		return err
	}

	service := apppricing.NewPriceService(apppricing.ServiceConfig{
		DefaultZip: rt.cfg.Pricing.DefaultZip,
		MaxItems:   staticMaxItems,
	}, mockprice.NewModel(), cache.NewMemoryResponseCache(),
		apppricing.WithDataset(store),
		apppricing.WithLogger(rt.log),
	)

	path := opts.out
	if path == "" {
		path = rt.cfg.Dataset.OutputPath
	}
	resp, err := apppricing.NewStaticBuilder(service, path, rt.log).Build(ctx, opts.items, opts.zip)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %s: %d items across %d ZIPs (home %s)\n", path, len(resp.Items), resp.ZipsReturned, resp.HomeZip)
	return nil
}
