package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crux-labs/pricewatch/internal/browser"
	"github.com/crux-labs/pricewatch/internal/config"
	"github.com/crux-labs/pricewatch/internal/extract"
	"github.com/crux-labs/pricewatch/internal/report"
	"github.com/crux-labs/pricewatch/internal/store"
	"github.com/crux-labs/pricewatch/internal/verify"
)

var (
	verifyEnv         string
	verifyGymID       string
	verifyDryRun      bool
	verifyVerbose     bool
	verifyScreenshots bool
	verifyConcurrency int
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify stored day-pass prices against live websites",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if verifyVerbose {
			lc := cfg.Log
			lc.Level = "debug"
			if err := config.InitLogger(lc); err != nil {
				return eris.Wrap(err, "init verbose logger")
			}
		}

		st, err := initStore(ctx, verifyEnv)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		gyms, err := st.ListGyms(ctx, store.GymFilter{GymID: verifyGymID})
		if err != nil {
			return eris.Wrap(err, "list gyms")
		}
		if len(gyms) == 0 {
			zap.L().Warn("no gyms matched", zap.String("gym_id", verifyGymID))
			return nil
		}

		zap.L().Info("verification starting",
			zap.String("environment", verifyEnv),
			zap.Int("gyms", len(gyms)),
		)

		if verifyDryRun {
			for _, gym := range gyms {
				url := gym.TargetURL()
				if url == "" {
					url = "(no URL)"
				}
				fmt.Printf("%s  %s  %s\n", gym.GymID, gym.Name, url)
			}
			return nil
		}

		if verifyScreenshots {
			if err := os.MkdirAll(cfg.Scrape.ScreenshotDir, 0o755); err != nil {
				return eris.Wrap(err, "create screenshot dir")
			}
		}

		session := browser.NewSession(browser.Config{
			NavigationTimeout: cfg.Scrape.NavigationTimeout(),
			SettleDelay:       cfg.Scrape.SettleDelay(),
			RequestsPerSecond: cfg.Scrape.RequestsPerSecond,
			RetryAttempts:     cfg.Scrape.RetryAttempts,
			RetryDelays:       cfg.Scrape.RetryDelays(),
		})

		extractor := extract.New(extract.Config{
			MinPrice: cfg.Extract.PriceMin,
			MaxPrice: cfg.Extract.PriceMax,
			Currency: cfg.Extract.Currency,
		})

		verifier := verify.New(session, extractor)
		results, err := verifier.Run(ctx, gyms, verify.Options{
			Screenshots:   verifyScreenshots,
			ScreenshotDir: cfg.Scrape.ScreenshotDir,
			Concurrency:   verifyConcurrency,
		})
		if err != nil {
			return eris.Wrap(err, "run verification")
		}

		rep := report.Build(results, verifyEnv)
		if err := report.Save(rep, cfg.Report.OutputPath); err != nil {
			return err
		}
		zap.L().Info("report saved",
			zap.String("path", cfg.Report.OutputPath),
			zap.String("run_id", rep.RunID),
		)

		report.PrintSummary(os.Stdout, rep)

		// A mismatch fails the run so CI can flag stale prices.
		if rep.Summary.Mismatched > 0 {
			return eris.Errorf("%d price mismatch(es) found", rep.Summary.Mismatched)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyEnv, "env", "production", "environment tag for the report (test selects the test database)")
	verifyCmd.Flags().StringVar(&verifyGymID, "gym-id", "", "verify a single gym by ID")
	verifyCmd.Flags().BoolVar(&verifyDryRun, "dry-run", false, "list the gyms that would be verified without fetching")
	verifyCmd.Flags().BoolVar(&verifyVerbose, "verbose", false, "enable debug logging")
	verifyCmd.Flags().BoolVar(&verifyScreenshots, "screenshots", false, "save a screenshot of each fetched page")
	verifyCmd.Flags().IntVar(&verifyConcurrency, "concurrency", 1, "number of gyms to verify at once")
	rootCmd.AddCommand(verifyCmd)
}
