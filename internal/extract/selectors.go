package extract

import (
	"github.com/PuerkitoBio/goquery"
)

// extractCSSPatterns inspects elements matched by pricing class/attribute
// patterns. The parent's text supplies the surrounding context for keyword
// and exclusion checks.
func extractCSSPatterns(doc *goquery.Document, cfg Config) []Candidate {
	var out []Candidate

	for _, selector := range priceSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			prices := pricesFromText(s.Text())
			if len(prices) == 0 {
				return
			}

			context := normalize(s.Parent().Text())
			score := 55
			if hasPriceKeyword(context) {
				score = 75
			}
			if hasExclusionKeyword(context) {
				score -= exclusionPenalty
			}

			for _, price := range prices {
				if !cfg.admissible(price) {
					continue
				}
				out = append(out, Candidate{
					Amount:  price,
					Score:   score,
					Source:  "css:" + selector,
					Context: "css selector " + selector,
				})
			}
		})
	}

	return out
}
