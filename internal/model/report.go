package model

import "time"

// VerifyStatus is the per-gym outcome classification.
type VerifyStatus string

const (
	StatusSuccess VerifyStatus = "success"
	StatusFailed  VerifyStatus = "failed"
	StatusSkipped VerifyStatus = "skipped"
)

// VerificationResult is one gym's verification outcome. Immutable once
// created; every GymRecord yields exactly one.
type VerificationResult struct {
	GymID          string          `json:"gym_id"`
	GymName        string          `json:"gym_name"`
	Status         VerifyStatus    `json:"status"`
	StoredPrice    *float64        `json:"stored_price"`
	ExtractedPrice *ExtractedPrice `json:"extracted_price"`
	ScrapedURL     string          `json:"scraped_url,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// Summary holds the run-level counts. The four bucket counts always sum
// to Total.
type Summary struct {
	Total      int `json:"total"`
	Matched    int `json:"matched"`
	Mismatched int `json:"mismatched"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// VerificationReport is the run-level aggregate, written once per run and
// never mutated after creation. Each result belongs to exactly one bucket.
type VerificationReport struct {
	RunID       string               `json:"run_id"`
	Timestamp   time.Time            `json:"timestamp"`
	Environment string               `json:"environment"`
	Summary     Summary              `json:"summary"`
	Matched     []VerificationResult `json:"matched"`
	Mismatched  []VerificationResult `json:"mismatched"`
	Failed      []VerificationResult `json:"failed"`
	Skipped     []VerificationResult `json:"skipped"`
}
