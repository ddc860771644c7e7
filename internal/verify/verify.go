// Package verify orchestrates the price verification pipeline: fetch each
// gym's page, extract a price, classify the outcome. One VerificationResult
// per record, always.
package verify

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crux-labs/pricewatch/internal/browser"
	"github.com/crux-labs/pricewatch/internal/model"
)

// Fetcher is the page-fetch seam; *browser.Session satisfies it.
type Fetcher interface {
	FetchWithRetry(ctx context.Context, url string, opts browser.FetchOptions) (model.FetchResult, error)
	Close()
}

// Extractor is the price-extraction seam.
type Extractor interface {
	Extract(html string) *model.ExtractedPrice
}

// Options are per-run knobs.
type Options struct {
	// Screenshots enables per-gym diagnostic screenshots under
	// ScreenshotDir, named by gym ID.
	Screenshots   bool
	ScreenshotDir string
	// Concurrency > 1 verifies that many gyms at once, one browser tab
	// each. Results are still delivered in input order.
	Concurrency int
}

// Verifier runs the per-record procedure over a list of gyms.
type Verifier struct {
	fetcher   Fetcher
	extractor Extractor
}

// New creates a Verifier.
func New(fetcher Fetcher, extractor Extractor) *Verifier {
	return &Verifier{fetcher: fetcher, extractor: extractor}
}

// Run verifies every gym and returns one result per record, in input order.
// The shared browser session is closed on every exit path. A returned error
// means the run itself failed (session could not be used at all); per-gym
// problems are carried inside the results instead.
func (v *Verifier) Run(ctx context.Context, gyms []model.GymRecord, opts Options) ([]model.VerificationResult, error) {
	defer v.fetcher.Close()

	if opts.Concurrency > 1 {
		return v.runConcurrent(ctx, gyms, opts)
	}

	results := make([]model.VerificationResult, 0, len(gyms))
	for i, gym := range gyms {
		res, err := v.VerifyGym(ctx, gym, opts)
		if err != nil {
			return results, eris.Wrap(err, "verify: run")
		}
		results = append(results, res)
		zap.L().Info("verify: gym processed",
			zap.String("progress", fmt.Sprintf("%d/%d", i+1, len(gyms))),
			zap.String("gym", gym.Name),
			zap.String("status", string(res.Status)),
		)
	}
	return results, nil
}

// runConcurrent fans gyms out over a bounded worker group. Each result is
// written at its input index, preserving the ordering guarantee of the
// sequential path.
func (v *Verifier) runConcurrent(ctx context.Context, gyms []model.GymRecord, opts Options) ([]model.VerificationResult, error) {
	results := make([]model.VerificationResult, len(gyms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, gym := range gyms {
		g.Go(func() error {
			res, err := v.VerifyGym(gctx, gym, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "verify: run concurrent")
	}
	return results, nil
}

// VerifyGym runs the per-record procedure: resolve URL, fetch with retry,
// extract, classify. The returned error is reserved for session-level
// failures that abort the run.
func (v *Verifier) VerifyGym(ctx context.Context, gym model.GymRecord, opts Options) (model.VerificationResult, error) {
	result := model.VerificationResult{
		GymID:       gym.GymID,
		GymName:     gym.Name,
		StoredPrice: gym.PriceAmount,
	}

	url := gym.TargetURL()
	if url == "" {
		result.Status = model.StatusSkipped
		result.Error = "No URL available"
		return result, nil
	}
	result.ScrapedURL = url

	var fetchOpts browser.FetchOptions
	if opts.Screenshots {
		fetchOpts.ScreenshotPath = filepath.Join(opts.ScreenshotDir, "gym-"+gym.GymID+".png")
	}

	fetched, err := v.fetcher.FetchWithRetry(ctx, url, fetchOpts)
	if err != nil {
		return model.VerificationResult{}, err
	}

	if fetched.HTML == "" {
		result.Status = model.StatusFailed
		result.Error = fetched.Error
		if result.Error == "" {
			result.Error = "Failed to fetch page"
		}
		return result, nil
	}

	price := v.extractor.Extract(fetched.HTML)
	if price == nil {
		result.Status = model.StatusFailed
		if fetched.BotDetected {
			// Distinct from a plain extraction miss: the page was a
			// challenge wall and needs a human, not a re-scrape.
			result.Error = "Bot detection - manual verification needed"
		} else {
			result.Error = "Could not extract price"
		}
		return result, nil
	}

	result.Status = model.StatusSuccess
	result.ExtractedPrice = price
	return result, nil
}
