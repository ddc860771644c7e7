package browser

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crux-labs/pricewatch/internal/model"
)

// fastPolicy keeps test backoffs tiny.
func fastPolicy(attempts int) retryPolicy {
	return retryPolicy{
		attempts: attempts,
		delays:   []time.Duration{time.Millisecond, time.Millisecond},
	}
}

func countingFetch(results ...model.FetchResult) (fetchFunc, *int) {
	calls := new(int)
	return func(ctx context.Context) (model.FetchResult, error) {
		idx := *calls
		*calls++
		if idx >= len(results) {
			idx = len(results) - 1
		}
		return results[idx], nil
	}, calls
}

func TestFetchWithRetry_SuccessFirstAttempt(t *testing.T) {
	fn, calls := countingFetch(model.FetchResult{HTML: "<html></html>", StatusCode: 200})

	res, err := fetchWithRetry(context.Background(), fastPolicy(2), fn)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, 1, *calls)
}

func TestFetchWithRetry_HTTPErrorShortCircuits(t *testing.T) {
	fn, calls := countingFetch(model.FetchResult{StatusCode: 404, Error: "HTTP 404"})

	res, err := fetchWithRetry(context.Background(), fastPolicy(2), fn)
	require.NoError(t, err)
	assert.Equal(t, "HTTP 404", res.Error)
	assert.Equal(t, 1, *calls, "a hard HTTP block must not be retried")
}

func TestFetchWithRetry_BotDetectionShortCircuits(t *testing.T) {
	fn, calls := countingFetch(model.FetchResult{BotDetected: true, Error: "Timeout"})

	res, err := fetchWithRetry(context.Background(), fastPolicy(2), fn)
	require.NoError(t, err)
	assert.True(t, res.BotDetected)
	assert.Equal(t, 1, *calls)
}

func TestFetchWithRetry_TimeoutExhaustsAttempts(t *testing.T) {
	fn, calls := countingFetch(model.FetchResult{Error: "Timeout"})

	res, err := fetchWithRetry(context.Background(), fastPolicy(2), fn)
	require.NoError(t, err)
	assert.Equal(t, "Timeout", res.Error)
	assert.Equal(t, 3, *calls, "1 + retryAttempts attempts expected")
}

func TestFetchWithRetry_RecoversOnSecondAttempt(t *testing.T) {
	fn, calls := countingFetch(
		model.FetchResult{Error: "Network error"},
		model.FetchResult{HTML: "<html>ok</html>", StatusCode: 200},
	)

	res, err := fetchWithRetry(context.Background(), fastPolicy(2), fn)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, 2, *calls)
}

func TestFetchWithRetry_ReturnsLastResultUnchanged(t *testing.T) {
	fn, _ := countingFetch(
		model.FetchResult{Error: "Network error"},
		model.FetchResult{Error: "Timeout", FinalURL: "https://example.com/final"},
	)

	res, err := fetchWithRetry(context.Background(), fastPolicy(1), fn)
	require.NoError(t, err)
	assert.Equal(t, "Timeout", res.Error)
	assert.Equal(t, "https://example.com/final", res.FinalURL)
}

func TestFetchWithRetry_SessionErrorIsFatal(t *testing.T) {
	sessionErr := eris.New("browser: start")
	calls := 0
	fn := func(ctx context.Context) (model.FetchResult, error) {
		calls++
		return model.FetchResult{}, sessionErr
	}

	_, err := fetchWithRetry(context.Background(), fastPolicy(2), fn)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "session failures are not retried")
}

func TestFetchWithRetry_BackoffHonorsContext(t *testing.T) {
	policy := retryPolicy{attempts: 2, delays: []time.Duration{time.Minute}}
	fn, calls := countingFetch(model.FetchResult{Error: "Timeout"})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := fetchWithRetry(ctx, policy, fn)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, *calls)
}

func TestRetryPolicy_DelaySchedule(t *testing.T) {
	p := retryPolicy{
		attempts: 5,
		delays:   []time.Duration{time.Second, 2 * time.Second},
	}
	assert.Equal(t, time.Second, p.delayFor(1))
	assert.Equal(t, 2*time.Second, p.delayFor(2))
	// Schedule exhausted: fall back to the default.
	assert.Equal(t, defaultRetryDelay, p.delayFor(3))
}
