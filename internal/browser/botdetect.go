package browser

import "strings"

// botIndicators are phrases suggesting the fetched page is an
// anti-automation challenge rather than real content.
var botIndicators = []string{
	"verify you are human",
	"captcha",
	"i am not a robot",
	"access denied",
	"403 forbidden",
	"rate limit exceeded",
	"too many requests",
	"please enable javascript",
	"browser check",
}

// DetectBot scans rendered HTML for bot-detection phrases. Detection is an
// annotation, not a failure: the caller decides what to do with it.
func DetectBot(html string) bool {
	lower := strings.ToLower(html)
	for _, phrase := range botIndicators {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
