package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crux-labs/pricewatch/internal/discovery"
	"github.com/crux-labs/pricewatch/internal/store"
)

var discoverEnv string

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find new or potentially closed gyms via the Places API",
	Long: `Searches the configured regions for climbing gyms and diffs the
results against the store. Produces a sync artifact for manual review;
the store itself is never modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Places.APIKey == "" {
			return eris.New("places API key is required (PRICEWATCH_PLACES_API_KEY)")
		}

		st, err := initStore(ctx, discoverEnv)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		existing, err := st.ListGyms(ctx, store.GymFilter{})
		if err != nil {
			return eris.Wrap(err, "list gyms")
		}
		zap.L().Info("discovery starting",
			zap.Int("existing_gyms", len(existing)),
			zap.Int("regions", len(cfg.Places.Regions)),
		)

		client := discovery.NewPlacesClient(cfg.Places)
		syncer := discovery.NewSyncer(client, cfg.Places)

		results, err := syncer.Sync(ctx, existing)
		if err != nil {
			return eris.Wrap(err, "run sync")
		}

		if err := discovery.SaveResults(results, cfg.Report.SyncPath); err != nil {
			return err
		}
		zap.L().Info("sync results saved", zap.String("path", cfg.Report.SyncPath))

		discovery.PrintResults(os.Stdout, results)
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverEnv, "env", "production", "environment tag (test selects the test database)")
	rootCmd.AddCommand(discoverCmd)
}
