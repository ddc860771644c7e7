// Package store provides read access to the gym record store. The
// verification pipeline treats the store as read-only: it lists records and
// never writes results back.
package store

import (
	"context"

	"github.com/crux-labs/pricewatch/internal/model"
)

// GymFilter specifies criteria for listing gyms.
type GymFilter struct {
	// GymID, when set, restricts the listing to a single record.
	GymID string
}

// Store defines the record-store interface for the verification pipeline.
type Store interface {
	ListGyms(ctx context.Context, filter GymFilter) ([]model.GymRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
