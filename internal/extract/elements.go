package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// elementSelector covers leaf-ish text-bearing elements.
const elementSelector = "h1, h2, h3, h4, h5, h6, p, span, li, td, th, div"

// extractTextElements scans individual text elements. Looking at elements
// one at a time avoids concatenation artifacts from nested markup on
// JS-heavy site builders, where a page-wide text scan would glue unrelated
// tiers together.
func extractTextElements(doc *goquery.Document, cfg Config) []Candidate {
	var out []Candidate
	seen := make(map[string]struct{})

	doc.Find(elementSelector).Each(func(_ int, s *goquery.Selection) {
		// Direct text only: elements whose own content isn't short and
		// price-like are containers, not price labels.
		own := strings.TrimSpace(ownText(s))
		if own == "" || len(own) > 100 {
			return
		}

		full := strings.TrimSpace(s.Text())
		if full == "" || len(full) > 150 {
			return
		}

		prices := pricesFromText(full)
		if len(prices) == 0 {
			return
		}

		lower := normalize(full)
		hasKeyword := hasPriceKeyword(lower)
		excluded := hasExclusionKeyword(lower)

		for _, price := range prices {
			if !cfg.admissible(price) {
				continue
			}

			key := fmt.Sprintf("%v-%s", price, truncate(lower, 30))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			score := 60
			if strings.Contains(lower, "adult") {
				score += 25
			} else if hasKeyword {
				score += 15
			}
			if excluded {
				score -= exclusionPenalty
			}

			out = append(out, Candidate{
				Amount:  price,
				Score:   score,
				Source:  "text-element",
				Context: fmt.Sprintf("element text: %q", truncate(full, 50)),
			})
		}
	})

	return out
}

// ownText returns the text of a selection's direct child text nodes,
// excluding nested elements.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, node := range s.Nodes {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return b.String()
}
