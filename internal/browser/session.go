// Package browser is the page-fetch layer. It owns a single long-lived
// headless Chrome session shared across fetches; each fetch runs in its own
// tab, released on every exit path.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	fakeua "github.com/EDDYCJY/fake-useragent"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/crux-labs/pricewatch/internal/model"
)

// Config controls navigation and retry behavior.
type Config struct {
	NavigationTimeout time.Duration
	// SettleDelay is the post-DOM-ready wait for late JS-rendered content.
	SettleDelay   time.Duration
	RetryAttempts int
	// RetryDelays is the backoff schedule, indexed by retry number. Retries
	// beyond the schedule use defaultRetryDelay.
	RetryDelays       []time.Duration
	RequestsPerSecond int
}

// DefaultConfig returns the standard fetch configuration.
func DefaultConfig() Config {
	return Config{
		NavigationTimeout: 30 * time.Second,
		SettleDelay:       2 * time.Second,
		RetryAttempts:     2,
		RetryDelays:       []time.Duration{time.Second, 2 * time.Second},
		RequestsPerSecond: 1,
	}
}

// fallbackUserAgent is used when the user-agent source is unavailable.
const fallbackUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// FetchOptions are per-fetch knobs.
type FetchOptions struct {
	// ScreenshotPath, when set, writes a full-page screenshot there as a
	// diagnostic side effect. Screenshot failures never fail the fetch.
	ScreenshotPath string
}

// Session is the sole shared mutable resource of a verification run: one
// browser process, lazily started on first fetch, closed exactly once.
type Session struct {
	cfg       Config
	userAgent string
	limiter   *rate.Limiter

	mu            sync.Mutex
	browserCtx    context.Context
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	closed        bool
}

// NewSession creates a Session. The browser process is not launched until
// the first fetch needs it.
func NewSession(cfg Config) *Session {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	ua := fakeua.Chrome()
	if ua == "" {
		ua = fallbackUserAgent
	}
	return &Session{
		cfg:       cfg,
		userAgent: ua,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// ensureStarted launches the browser process on first use. A failure here is
// fatal to the whole run, unlike per-fetch transport errors.
func (s *Session) ensureStarted() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, eris.New("browser: session closed")
	}
	if s.browserCtx != nil {
		return s.browserCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(s.userAgent),
		chromedp.WindowSize(1280, 800),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the process now so acquisition failures surface immediately.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, eris.Wrap(err, "browser: start")
	}

	s.browserCtx = browserCtx
	s.allocCancel = allocCancel
	s.browserCancel = browserCancel
	zap.L().Debug("browser: session started", zap.String("user_agent", s.userAgent))
	return browserCtx, nil
}

// Close tears the browser down. Safe to call more than once; only the first
// call does anything.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	s.browserCtx = nil
}

// FetchOnce performs a single navigation attempt. Transport-level problems
// are reported inside the FetchResult; the returned error is reserved for
// session-level failures that should abort the run.
func (s *Session) FetchOnce(ctx context.Context, url string, opts FetchOptions) (model.FetchResult, error) {
	browserCtx, err := s.ensureStarted()
	if err != nil {
		return model.FetchResult{}, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return model.FetchResult{Error: classifyError(err)}, nil
	}

	// One tab per fetch, released no matter how the attempt ends.
	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.cfg.NavigationTimeout)
	defer cancelTimeout()

	var status atomic.Int64
	chromedp.ListenTarget(tabCtx, func(ev any) {
		recordDocumentStatus(&status, ev)
	})

	var finalURL string
	err = chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.cfg.SettleDelay),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return model.FetchResult{Error: classifyError(err)}, nil
	}

	statusCode := int(status.Load())
	if statusCode >= 400 {
		return model.FetchResult{
			StatusCode: statusCode,
			FinalURL:   finalURL,
			Error:      fmt.Sprintf("HTTP %d", statusCode),
		}, nil
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return model.FetchResult{
			StatusCode: statusCode,
			FinalURL:   finalURL,
			Error:      classifyError(err),
		}, nil
	}

	res := model.FetchResult{
		HTML:        html,
		StatusCode:  statusCode,
		FinalURL:    finalURL,
		BotDetected: DetectBot(html),
	}
	if res.BotDetected {
		zap.L().Warn("browser: possible bot detection", zap.String("url", url))
	}

	if opts.ScreenshotPath != "" {
		s.captureScreenshot(tabCtx, url, opts.ScreenshotPath)
	}

	return res, nil
}

// recordDocumentStatus keeps the first document response's status. Any
// later document response belongs to a frame loading after the root
// navigation and must not overwrite it.
func recordDocumentStatus(status *atomic.Int64, ev any) {
	if resp, ok := ev.(*network.EventResponseReceived); ok && resp.Type == network.ResourceTypeDocument {
		status.CompareAndSwap(0, resp.Response.Status)
	}
}

// captureScreenshot is a diagnostic side effect with no bearing on control
// flow.
func (s *Session) captureScreenshot(tabCtx context.Context, url, path string) {
	var buf []byte
	if err := chromedp.Run(tabCtx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		zap.L().Warn("browser: screenshot failed", zap.String("url", url), zap.Error(err))
		return
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		zap.L().Warn("browser: write screenshot", zap.String("path", path), zap.Error(err))
		return
	}
	zap.L().Debug("browser: screenshot saved", zap.String("path", path))
}

// classifyError maps transport exceptions onto the fixed error taxonomy.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	case strings.Contains(err.Error(), "net::ERR"):
		return "Network error"
	default:
		return err.Error()
	}
}
