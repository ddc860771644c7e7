package model

// GymRecord is one organization to verify, as read from the record store.
// Records are immutable for the duration of a run; the verification
// pipeline never writes them back.
type GymRecord struct {
	GymID          string   `json:"gym_id"`
	Name           string   `json:"name"`
	PriceAmount    *float64 `json:"price_amount"`
	PriceSourceURL *string  `json:"price_source_url"`
	WebsiteURL     *string  `json:"website_url"`

	// Place metadata, used by the discovery sync.
	PlaceID string `json:"place_id,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

// TargetURL returns the URL to fetch for this gym: the dedicated price-source
// page when present, falling back to the general website. Empty when neither
// exists.
func (g GymRecord) TargetURL() string {
	if g.PriceSourceURL != nil && *g.PriceSourceURL != "" {
		return *g.PriceSourceURL
	}
	if g.WebsiteURL != nil && *g.WebsiteURL != "" {
		return *g.WebsiteURL
	}
	return ""
}

// Confidence is the coarse band derived from the winning candidate's score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ExtractedPrice is the winning price candidate reified as output.
type ExtractedPrice struct {
	Amount     float64    `json:"amount"`
	Currency   string     `json:"currency"`
	Confidence Confidence `json:"confidence"`
	// Source identifies the extraction strategy that produced the price.
	Source string `json:"source"`
}

// FetchResult is the outcome of one page navigation attempt. HTML is empty
// on failure; Error carries a classified, human-readable message.
type FetchResult struct {
	HTML        string `json:"-"`
	StatusCode  int    `json:"status_code,omitempty"`
	FinalURL    string `json:"final_url,omitempty"`
	BotDetected bool   `json:"bot_detected,omitempty"`
	Error       string `json:"error,omitempty"`
}

// OK reports whether the attempt produced usable HTML.
func (r FetchResult) OK() bool {
	return r.HTML != "" && r.Error == ""
}
