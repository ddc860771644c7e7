package extract

import (
	"encoding/json"
	"sort"

	"github.com/PuerkitoBio/goquery"
)

// extractStructuredData walks embedded JSON-LD payloads for admissible
// amounts. Structured data is trusted highest and deliberately ignores
// exclusion context. Malformed payloads yield no candidates.
func extractStructuredData(doc *goquery.Document, cfg Config) []Candidate {
	var out []Candidate

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}
		for _, amount := range pricesInValue(data, cfg) {
			out = append(out, Candidate{
				Amount:  amount,
				Score:   90,
				Source:  "structured-data",
				Context: "JSON-LD structured data",
			})
		}
	})

	return out
}

// pricesInValue recursively collects admissible amounts from a decoded JSON
// value: numbers directly, currency tokens inside strings, and every element
// of arrays and objects.
func pricesInValue(v any, cfg Config) []float64 {
	var prices []float64
	switch val := v.(type) {
	case float64:
		if cfg.admissible(val) {
			prices = append(prices, val)
		}
	case string:
		for _, p := range pricesFromText(val) {
			if cfg.admissible(p) {
				prices = append(prices, p)
			}
		}
	case []any:
		for _, item := range val {
			prices = append(prices, pricesInValue(item, cfg)...)
		}
	case map[string]any:
		// Walk keys in sorted order so candidate order is deterministic.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			prices = append(prices, pricesInValue(val[k], cfg)...)
		}
	}
	return prices
}
