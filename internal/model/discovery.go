package model

import "time"

// GymCandidate is a place returned by the search API that has no matching
// record in the store.
type GymCandidate struct {
	PlaceID    string   `json:"place_id"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	WebsiteURL string   `json:"website_url,omitempty"`
	MapsURL    string   `json:"maps_url"`
	Types      []string `json:"types,omitempty"`
}

// ClosedGym is a stored record whose place no longer appears in search
// results, suggesting the business may have closed.
type ClosedGym struct {
	GymID   string `json:"gym_id"`
	Name    string `json:"name"`
	PlaceID string `json:"place_id"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// SyncResults is the discovery sync artifact: the two set differences plus
// run metadata. Like the verification report, it is output only; nothing is
// written back to the store.
type SyncResults struct {
	Timestamp         time.Time      `json:"timestamp"`
	NewGymCandidates  []GymCandidate `json:"new_gym_candidates"`
	PotentiallyClosed []ClosedGym    `json:"potentially_closed_gyms"`
	ExistingGymsCount int            `json:"existing_gyms_count"`
	APICallsMade      int            `json:"api_calls_made"`
}
