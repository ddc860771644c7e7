package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// proximityPattern pairs a price keyword with its two directional scan
// forms: keyword-then-price and price-then-keyword, each within 100 chars.
type proximityPattern struct {
	keyword string
	forward *regexp.Regexp
	reverse *regexp.Regexp
}

var proximityPatterns = buildProximityPatterns()

func buildProximityPatterns() []proximityPattern {
	const amount = `\$\s*(\d+(?:\.\d{2})?)`
	out := make([]proximityPattern, 0, len(priceKeywords))
	for _, kw := range priceKeywords {
		escaped := regexp.QuoteMeta(kw)
		out = append(out, proximityPattern{
			keyword: kw,
			forward: regexp.MustCompile(escaped + `[^$]{0,100}` + amount),
			reverse: regexp.MustCompile(amount + `[^$]{0,100}` + escaped),
		})
	}
	return out
}

// extractKeywordProximity scans normalized whole-page text for amounts
// within 100 characters of a pricing keyword, in either direction.
func extractKeywordProximity(doc *goquery.Document, cfg Config) []Candidate {
	bodyText := normalize(doc.Find("body").Text())

	var out []Candidate
	for _, p := range proximityPatterns {
		// Day/drop keywords are the most specific day-pass signals.
		base := 70
		if strings.Contains(p.keyword, "day") || strings.Contains(p.keyword, "drop") {
			base = 85
		}

		for _, re := range []*regexp.Regexp{p.forward, p.reverse} {
			for _, m := range re.FindAllStringSubmatch(bodyText, -1) {
				amount, err := strconv.ParseFloat(m[1], 64)
				if err != nil || !cfg.admissible(amount) {
					continue
				}

				score := base
				if hasExclusionKeyword(m[0]) {
					score -= exclusionPenalty
				}

				out = append(out, Candidate{
					Amount:  amount,
					Score:   score,
					Source:  "keyword-proximity:" + p.keyword,
					Context: "near " + strconv.Quote(p.keyword),
				})
			}
		}
	}

	return out
}
