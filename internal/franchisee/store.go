// Package franchisee owns franchisee persistence and the duplicate-merge
// workflow against the portal database.
package franchisee

import (
	"context"

	"github.com/sells-group/portal-cli/internal/model"
)

// ListFilter specifies criteria for listing franchisees.
type ListFilter struct {
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines persistence operations for the franchisee data model.
type Store interface {
	CreateFranchisee(ctx context.Context, f *model.Franchisee) error
	UpdateFranchisee(ctx context.Context, f *model.Franchisee) error
	GetFranchisee(ctx context.Context, id string) (*model.Franchisee, error)
	ListFranchisees(ctx context.Context, filter ListFilter) ([]model.Franchisee, error)

	// Restaurant assignments
	ListRestaurants(ctx context.Context, franchiseeID string) ([]model.RestaurantAssignment, error)
	CountRestaurants(ctx context.Context, franchiseeID string) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
}
