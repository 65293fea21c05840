package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/portal-cli/internal/db"
	"github.com/sells-group/portal-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. The caller keeps ownership
// of the pool's lifecycle.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying database pool for subsystems that need
// direct query access (e.g., franchisee persistence and merging).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS valuations (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	franchisee_id TEXT,
	label         TEXT NOT NULL DEFAULT '',
	inputs        JSONB NOT NULL,
	yearly_data   JSONB NOT NULL,
	projections   JSONB,
	total_price   DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_valuations_franchisee_id ON valuations(franchisee_id);
CREATE INDEX IF NOT EXISTS idx_valuations_created_at ON valuations(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateValuation(ctx context.Context, v *model.Valuation) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now

	inputs, yearly, projections, err := marshalValuation(v)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal valuation")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO valuations (id, franchisee_id, label, inputs, yearly_data, projections, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		v.ID, nullableID(v.FranchiseeID), v.Label, inputs, yearly, projections, v.TotalPrice, now, now,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert valuation")
	}
	return nil
}

func (s *PostgresStore) UpdateValuation(ctx context.Context, v *model.Valuation) error {
	v.UpdatedAt = time.Now().UTC()

	inputs, yearly, projections, err := marshalValuation(v)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal valuation")
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE valuations SET
			franchisee_id=$2, label=$3, inputs=$4, yearly_data=$5, projections=$6,
			total_price=$7, updated_at=$8
		WHERE id=$1`,
		v.ID, nullableID(v.FranchiseeID), v.Label, inputs, yearly, projections, v.TotalPrice, v.UpdatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update valuation %s", v.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("valuation not found: %s", v.ID)
	}
	return nil
}

// GetValuation fetches a valuation by ID. Returns (nil, nil) if absent.
func (s *PostgresStore) GetValuation(ctx context.Context, id string) (*model.Valuation, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, COALESCE(franchisee_id, ''), label, inputs, yearly_data, projections, total_price, created_at, updated_at
		FROM valuations WHERE id=$1`, id)

	v, err := scanValuation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get valuation %s", id)
	}
	return v, nil
}

func (s *PostgresStore) ListValuations(ctx context.Context, filter ValuationFilter) ([]model.Valuation, error) {
	query := `
		SELECT id, COALESCE(franchisee_id, ''), label, inputs, yearly_data, projections, total_price, created_at, updated_at
		FROM valuations WHERE true`
	var args []any
	argIdx := 1

	if filter.FranchiseeID != "" {
		query += fmt.Sprintf(` AND franchisee_id = $%d`, argIdx)
		args = append(args, filter.FranchiseeID)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
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
		return nil, eris.Wrap(err, "postgres: list valuations")
	}
	defer rows.Close()

	var out []model.Valuation
	for rows.Next() {
		v, err := scanValuation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan valuation")
		}
		out = append(out, *v)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list iterate")
}

func (s *PostgresStore) DeleteValuation(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM valuations WHERE id=$1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete valuation %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("valuation not found: %s", id)
	}
	return nil
}

func marshalValuation(v *model.Valuation) (inputs, yearly, projections []byte, err error) {
	if inputs, err = json.Marshal(v.Inputs); err != nil {
		return nil, nil, nil, err
	}
	if yearly, err = json.Marshal(v.YearlyData); err != nil {
		return nil, nil, nil, err
	}
	if v.Projections != nil {
		if projections, err = json.Marshal(v.Projections); err != nil {
			return nil, nil, nil, err
		}
	}
	return inputs, yearly, projections, nil
}

func scanValuation(row pgx.Row) (*model.Valuation, error) {
	var (
		v           model.Valuation
		inputs      []byte
		yearly      []byte
		projections []byte
	)
	if err := row.Scan(&v.ID, &v.FranchiseeID, &v.Label, &inputs, &yearly, &projections, &v.TotalPrice, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(inputs, &v.Inputs); err != nil {
		return nil, eris.Wrap(err, "unmarshal inputs")
	}
	if err := json.Unmarshal(yearly, &v.YearlyData); err != nil {
		return nil, eris.Wrap(err, "unmarshal yearly data")
	}
	if len(projections) > 0 {
		if err := json.Unmarshal(projections, &v.Projections); err != nil {
			return nil, eris.Wrap(err, "unmarshal projections")
		}
	}
	return &v, nil
}

func nullableID(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
