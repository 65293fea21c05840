package model

import "time"

// Franchisee represents a franchise operator record in the portal.
// Email comes from the joined advisor profile, not the franchisee row itself.
type Franchisee struct {
	ID               string    `json:"id" yaml:"id"`
	Name             string    `json:"franchisee_name" yaml:"franchisee_name"`
	CompanyName      string    `json:"company_name,omitempty" yaml:"company_name,omitempty"`
	TaxID            string    `json:"tax_id,omitempty" yaml:"tax_id,omitempty"`
	Email            string    `json:"email,omitempty" yaml:"email,omitempty"`
	Address          string    `json:"address,omitempty" yaml:"address,omitempty"`
	City             string    `json:"city,omitempty" yaml:"city,omitempty"`
	State            string    `json:"state,omitempty" yaml:"state,omitempty"`
	PostalCode       string    `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
	TotalRestaurants int       `json:"total_restaurants" yaml:"total_restaurants,omitempty"`
	CreatedAt        time.Time `json:"created_at" yaml:"-"`
	UpdatedAt        time.Time `json:"updated_at" yaml:"-"`
}

// RestaurantAssignment links a franchisee to a restaurant site.
type RestaurantAssignment struct {
	ID           string    `json:"id"`
	FranchiseeID string    `json:"franchisee_id"`
	SiteNumber   string    `json:"site_number"`
	SiteName     string    `json:"site_name"`
	AssignedAt   time.Time `json:"assigned_at"`
}

// DuplicateGroup is an ephemeral grouping of franchisees flagged as
// probable duplicates of each other. Never persisted; recomputed on demand.
type DuplicateGroup struct {
	Key         string       `json:"key"`
	Franchisees []Franchisee `json:"franchisees"`
	Count       int          `json:"count"`
	Reasons     []string     `json:"reasons"`
}

// MergeResult is the outward contract of a merge operation.
type MergeResult struct {
	Success          bool        `json:"success"`
	MergedFranchisee *Franchisee `json:"merged_franchisee,omitempty"`
	Error            string      `json:"error,omitempty"`
}

// MergeAudit records a completed merge for later review.
type MergeAudit struct {
	ID           string    `json:"id"`
	PrimaryID    string    `json:"primary_id"`
	DuplicateIDs []string  `json:"duplicate_ids"`
	Reassigned   int       `json:"reassigned"`
	MergedAt     time.Time `json:"merged_at"`
}
