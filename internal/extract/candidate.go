package extract

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Candidate is a provisional price value plus the score and strategy that
// produced it. Candidates are ephemeral: created, ranked and discarded
// within a single Extract call.
type Candidate struct {
	Amount  float64
	Score   int
	Source  string
	Context string
}

// exclusionPenalty is the flat deduction applied when exclusion context is
// detected near a candidate.
const exclusionPenalty = 50

// priceRe matches currency amounts of the form $XX, $XX.XX, $ XX.
var priceRe = regexp.MustCompile(`\$\s*(\d+(?:\.\d{2})?)`)

// pricesFromText returns every currency amount found in text, unfiltered.
func pricesFromText(text string) []float64 {
	var prices []float64
	for _, m := range priceRe.FindAllStringSubmatch(text, -1) {
		amount, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		prices = append(prices, amount)
	}
	return prices
}

// admissible reports whether an amount falls in the configured price window.
// Out-of-window amounts are discarded before scoring.
func (c Config) admissible(amount float64) bool {
	return amount >= c.MinPrice && amount <= c.MaxPrice
}

// normalize lowercases text after NFKC normalization so keyword scans see a
// consistent form regardless of how the page encodes whitespace and digits.
func normalize(text string) string {
	return strings.ToLower(norm.NFKC.String(text))
}

// hasPriceKeyword reports whether lower (already normalized) contains any
// day-pass pricing keyword.
func hasPriceKeyword(lower string) bool {
	for _, kw := range priceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// hasExclusionKeyword reports whether lower (already normalized) contains
// any discounted-tier keyword.
func hasExclusionKeyword(lower string) bool {
	for _, kw := range exclusionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
