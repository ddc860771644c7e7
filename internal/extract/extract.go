// Package extract recovers a single day-pass price from unstructured HTML.
// Six independent heuristics each emit scored candidates; the pool is ranked
// and the best candidate reported with a confidence band. Extraction is a
// pure function of its input: no network, no mutation.
package extract

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/crux-labs/pricewatch/internal/model"
)

// Config bounds admissible amounts and fixes the reported currency.
type Config struct {
	MinPrice float64
	MaxPrice float64
	Currency string
}

// DefaultConfig models expected day-pass prices.
func DefaultConfig() Config {
	return Config{MinPrice: 15, MaxPrice: 50, Currency: "CAD"}
}

// strategy turns a parsed document into zero or more scored candidates.
// Strategies are order-independent and side-effect-free; a failing strategy
// contributes nothing rather than aborting the others.
type strategy struct {
	name string
	run  func(doc *goquery.Document, cfg Config) []Candidate
}

// strategies run unconditionally on every extraction; their outputs are
// pooled, never short-circuited. Pool order breaks score ties via the
// stable sort in Extract.
var strategies = []strategy{
	{"structured-data", extractStructuredData},
	{"text-element", extractTextElements},
	{"keyword-proximity", extractKeywordProximity},
	{"table-row", extractTableRows},
	{"css-pattern", extractCSSPatterns},
	{"heuristic", extractFrequency},
}

// Extractor extracts prices under a fixed configuration.
type Extractor struct {
	cfg Config
}

// New creates an Extractor, filling zero-valued config fields with defaults.
func New(cfg Config) *Extractor {
	def := DefaultConfig()
	if cfg.MinPrice == 0 && cfg.MaxPrice == 0 {
		cfg.MinPrice = def.MinPrice
		cfg.MaxPrice = def.MaxPrice
	}
	if cfg.Currency == "" {
		cfg.Currency = def.Currency
	}
	return &Extractor{cfg: cfg}
}

// Extract returns the best price candidate found in html, or nil when no
// strategy produced an admissible candidate.
func (e *Extractor) Extract(html string) *model.ExtractedPrice {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		zap.L().Debug("extract: unparseable document", zap.Error(err))
		return nil
	}

	var pool []Candidate
	for _, s := range strategies {
		found := s.run(doc, e.cfg)
		if len(found) > 0 {
			zap.L().Debug("extract: strategy candidates",
				zap.String("strategy", s.name),
				zap.Int("count", len(found)),
			)
		}
		pool = append(pool, found...)
	}

	if len(pool) == 0 {
		return nil
	}

	// Highest score wins; stable sort keeps pooling order as tie-break.
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	best := pool[0]
	return &model.ExtractedPrice{
		Amount:     best.Amount,
		Currency:   e.cfg.Currency,
		Confidence: confidenceFor(best.Score),
		Source:     best.Source,
	}
}

// confidenceFor maps a winning score to its confidence band.
func confidenceFor(score int) model.Confidence {
	switch {
	case score >= 80:
		return model.ConfidenceHigh
	case score >= 50:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}
