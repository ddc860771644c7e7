package browser

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/crux-labs/pricewatch/internal/model"
)

// defaultRetryDelay is used when the configured backoff schedule is
// exhausted.
const defaultRetryDelay = 2 * time.Second

// fetchFunc is one fetch attempt; the retry loop takes it as a parameter so
// tests can simulate attempt sequences without a browser.
type fetchFunc func(ctx context.Context) (model.FetchResult, error)

// retryPolicy bounds the retry loop: attempts beyond the first, and the
// backoff schedule between them.
type retryPolicy struct {
	attempts int
	delays   []time.Duration
}

// delayFor returns the backoff before the given retry (1-based).
func (p retryPolicy) delayFor(retry int) time.Duration {
	if idx := retry - 1; idx >= 0 && idx < len(p.delays) {
		return p.delays[idx]
	}
	return defaultRetryDelay
}

// FetchWithRetry wraps FetchOnce with bounded retry and backoff. Retries
// stop early on a hard HTTP block or detected bot wall. The last attempt's
// result is returned unchanged when every attempt fails.
func (s *Session) FetchWithRetry(ctx context.Context, url string, opts FetchOptions) (model.FetchResult, error) {
	policy := retryPolicy{attempts: s.cfg.RetryAttempts, delays: s.cfg.RetryDelays}
	return fetchWithRetry(ctx, policy, func(ctx context.Context) (model.FetchResult, error) {
		return s.FetchOnce(ctx, url, opts)
	})
}

func fetchWithRetry(ctx context.Context, policy retryPolicy, fn fetchFunc) (model.FetchResult, error) {
	last := model.FetchResult{Error: "no attempts made"}

	for attempt := 0; attempt <= policy.attempts; attempt++ {
		if attempt > 0 {
			delay := policy.delayFor(attempt)
			zap.L().Debug("browser: retrying fetch",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return last, ctx.Err()
			case <-timer.C:
			}
		}

		res, err := fn(ctx)
		if err != nil {
			// Session-level failure: fatal, not retried.
			return model.FetchResult{}, err
		}
		last = res

		if res.OK() {
			return res, nil
		}
		if res.StatusCode >= 400 {
			break
		}
		if res.BotDetected {
			break
		}
	}

	return last, nil
}
