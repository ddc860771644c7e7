package extract

import (
	"fmt"
	"sort"

	"github.com/PuerkitoBio/goquery"
)

// extractFrequency is the fallback: every admissible amount anywhere in the
// body, grouped by value and scored by occurrence count. The score is capped
// at 49 so a frequent on-page number alone never reaches medium confidence.
func extractFrequency(doc *goquery.Document, cfg Config) []Candidate {
	counts := make(map[float64]int)
	for _, price := range pricesFromText(doc.Find("body").Text()) {
		if cfg.admissible(price) {
			counts[price]++
		}
	}

	amounts := make([]float64, 0, len(counts))
	for amount := range counts {
		amounts = append(amounts, amount)
	}
	sort.Float64s(amounts)

	out := make([]Candidate, 0, len(amounts))
	for _, amount := range amounts {
		count := counts[amount]
		score := 40 + 5*count
		if score > 49 {
			score = 49
		}
		out = append(out, Candidate{
			Amount:  amount,
			Score:   score,
			Source:  "heuristic",
			Context: fmt.Sprintf("appeared %d times", count),
		})
	}
	return out
}
