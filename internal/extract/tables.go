package extract

import (
	"github.com/PuerkitoBio/goquery"
)

// rowSelector covers tabular and list-like pricing structures.
const rowSelector = `table tr, .pricing-row, [class*="pricing"] li, [class*="price"] li`

// extractTableRows keeps rows whose text carries a pricing keyword. An
// exclusion keyword in the same row marks a discounted tier; the penalty is
// applied outright and can push the score negative.
func extractTableRows(doc *goquery.Document, cfg Config) []Candidate {
	var out []Candidate

	doc.Find(rowSelector).Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		lower := normalize(text)

		if !hasPriceKeyword(lower) {
			return
		}

		score := 80
		if hasExclusionKeyword(lower) {
			score -= exclusionPenalty
		}

		for _, price := range pricesFromText(text) {
			if !cfg.admissible(price) {
				continue
			}
			out = append(out, Candidate{
				Amount:  price,
				Score:   score,
				Source:  "table-row",
				Context: "table/list row with keyword",
			})
		}
	})

	return out
}
