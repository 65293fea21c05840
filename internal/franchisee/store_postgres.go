package franchisee

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/portal-cli/internal/db"
	"github.com/sells-group/portal-cli/internal/model"
)

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// franchiseeColumns selects a franchisee with its joined profile email and
// restaurant count. Text columns are coalesced so NULLs scan cleanly.
const franchiseeColumns = `
	f.id, f.franchisee_name,
	COALESCE(f.company_name, ''), COALESCE(f.tax_id, ''),
	COALESCE(p.email, ''),
	COALESCE(f.address, ''), COALESCE(f.city, ''), COALESCE(f.state, ''), COALESCE(f.postal_code, ''),
	(SELECT COUNT(*) FROM franchisee_restaurants r WHERE r.franchisee_id = f.id),
	f.created_at, f.updated_at`

func scanFranchisee(row pgx.Row, f *model.Franchisee) error {
	return row.Scan(
		&f.ID, &f.Name,
		&f.CompanyName, &f.TaxID,
		&f.Email,
		&f.Address, &f.City, &f.State, &f.PostalCode,
		&f.TotalRestaurants,
		&f.CreatedAt, &f.UpdatedAt,
	)
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS franchisees (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	franchisee_name TEXT NOT NULL,
	company_name    TEXT,
	tax_id          TEXT,
	address         TEXT,
	city            TEXT,
	state           TEXT,
	postal_code     TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profiles (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	franchisee_id TEXT NOT NULL REFERENCES franchisees(id) ON DELETE CASCADE,
	email         TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS franchisee_restaurants (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	franchisee_id TEXT NOT NULL REFERENCES franchisees(id),
	site_number   TEXT NOT NULL,
	site_name     TEXT NOT NULL DEFAULT '',
	assigned_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS merge_audit (
	id            TEXT PRIMARY KEY,
	primary_id    TEXT NOT NULL,
	duplicate_ids TEXT[] NOT NULL,
	reassigned    INTEGER NOT NULL DEFAULT 0,
	merged_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_franchisees_tax_id ON franchisees(tax_id);
CREATE INDEX IF NOT EXISTS idx_profiles_franchisee_id ON profiles(franchisee_id);
CREATE INDEX IF NOT EXISTS idx_restaurants_franchisee_id ON franchisee_restaurants(franchisee_id);
`

// Migrate creates the franchisee schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "franchisee: migrate")
}

// CreateFranchisee inserts a new franchisee and sets its ID.
func (s *PostgresStore) CreateFranchisee(ctx context.Context, f *model.Franchisee) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO franchisees (id, franchisee_name, company_name, tax_id, address, city, state, postal_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		f.ID, f.Name, nilIfEmpty(f.CompanyName), nilIfEmpty(f.TaxID),
		nilIfEmpty(f.Address), nilIfEmpty(f.City), nilIfEmpty(f.State), nilIfEmpty(f.PostalCode),
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return eris.Wrap(err, "franchisee: create")
	}
	return nil
}

// UpdateFranchisee updates an existing franchisee record.
func (s *PostgresStore) UpdateFranchisee(ctx context.Context, f *model.Franchisee) error {
	f.UpdatedAt = time.Now()
	tag, err := s.pool.Exec(ctx, `
		UPDATE franchisees SET
			franchisee_name=$2, company_name=$3, tax_id=$4,
			address=$5, city=$6, state=$7, postal_code=$8,
			updated_at=now()
		WHERE id=$1`,
		f.ID,
		f.Name, nilIfEmpty(f.CompanyName), nilIfEmpty(f.TaxID),
		nilIfEmpty(f.Address), nilIfEmpty(f.City), nilIfEmpty(f.State), nilIfEmpty(f.PostalCode),
	)
	if err != nil {
		return eris.Wrapf(err, "franchisee: update %s", f.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("franchisee not found: %s", f.ID)
	}
	return nil
}

// GetFranchisee fetches a franchisee by ID. Returns (nil, nil) if absent.
func (s *PostgresStore) GetFranchisee(ctx context.Context, id string) (*model.Franchisee, error) {
	f := &model.Franchisee{}
	err := scanFranchisee(s.pool.QueryRow(ctx, `
		SELECT `+franchiseeColumns+`
		FROM franchisees f
		LEFT JOIN profiles p ON p.franchisee_id = f.id
		WHERE f.id=$1`, id), f)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "franchisee: get %s", id)
	}
	return f, nil
}

// ListFranchisees returns franchisees matching the filter, newest first.
func (s *PostgresStore) ListFranchisees(ctx context.Context, filter ListFilter) ([]model.Franchisee, error) {
	query := `
		SELECT ` + franchiseeColumns + `
		FROM franchisees f
		LEFT JOIN profiles p ON p.franchisee_id = f.id
		WHERE true`
	args := []any{}
	argIdx := 1

	if filter.City != "" {
		query += fmt.Sprintf(` AND f.city = $%d`, argIdx)
		args = append(args, filter.City)
		argIdx++
	}
	if filter.State != "" {
		query += fmt.Sprintf(` AND f.state = $%d`, argIdx)
		args = append(args, filter.State)
		argIdx++
	}
	query += ` ORDER BY f.created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "franchisee: list")
	}
	defer rows.Close()

	var out []model.Franchisee
	for rows.Next() {
		var f model.Franchisee
		if err := scanFranchisee(rows, &f); err != nil {
			return nil, eris.Wrap(err, "franchisee: scan")
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "franchisee: list iterate")
}

// ListRestaurants returns the restaurant assignments of a franchisee.
func (s *PostgresStore) ListRestaurants(ctx context.Context, franchiseeID string) ([]model.RestaurantAssignment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, franchisee_id, site_number, site_name, assigned_at
		FROM franchisee_restaurants WHERE franchisee_id=$1
		ORDER BY site_number`, franchiseeID)
	if err != nil {
		return nil, eris.Wrapf(err, "franchisee: list restaurants %s", franchiseeID)
	}
	defer rows.Close()

	var out []model.RestaurantAssignment
	for rows.Next() {
		var r model.RestaurantAssignment
		if err := rows.Scan(&r.ID, &r.FranchiseeID, &r.SiteNumber, &r.SiteName, &r.AssignedAt); err != nil {
			return nil, eris.Wrap(err, "franchisee: scan restaurant")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRestaurants returns the number of restaurants assigned to a franchisee.
func (s *PostgresStore) CountRestaurants(ctx context.Context, franchiseeID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM franchisee_restaurants WHERE franchisee_id=$1`,
		franchiseeID,
	).Scan(&count)
	return count, eris.Wrapf(err, "franchisee: count restaurants %s", franchiseeID)
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
