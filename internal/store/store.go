// Package store persists valuations behind a driver-agnostic interface
// with Postgres and SQLite backends.
package store

import (
	"context"

	"github.com/sells-group/portal-cli/internal/model"
)

// ValuationFilter specifies criteria for listing valuations.
type ValuationFilter struct {
	FranchiseeID string `json:"franchisee_id,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for valuations.
type Store interface {
	CreateValuation(ctx context.Context, v *model.Valuation) error
	UpdateValuation(ctx context.Context, v *model.Valuation) error
	GetValuation(ctx context.Context, id string) (*model.Valuation, error)
	ListValuations(ctx context.Context, filter ValuationFilter) ([]model.Valuation, error)
	DeleteValuation(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
