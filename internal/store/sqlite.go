package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/portal-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It backs
// single-advisor installs that run without a Postgres server.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS valuations (
	id            TEXT PRIMARY KEY,
	franchisee_id TEXT,
	label         TEXT NOT NULL DEFAULT '',
	inputs        TEXT NOT NULL,
	yearly_data   TEXT NOT NULL,
	projections   TEXT,
	total_price   REAL NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_valuations_franchisee_id ON valuations(franchisee_id);
CREATE INDEX IF NOT EXISTS idx_valuations_created_at ON valuations(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateValuation(ctx context.Context, v *model.Valuation) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now

	inputs, yearly, projections, err := marshalValuation(v)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal valuation")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO valuations (id, franchisee_id, label, inputs, yearly_data, projections, total_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.FranchiseeID, v.Label, string(inputs), string(yearly), jsonOrNull(projections), v.TotalPrice, now, now,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert valuation")
	}
	return nil
}

func (s *SQLiteStore) UpdateValuation(ctx context.Context, v *model.Valuation) error {
	v.UpdatedAt = time.Now().UTC()

	inputs, yearly, projections, err := marshalValuation(v)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal valuation")
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE valuations SET
			franchisee_id = ?, label = ?, inputs = ?, yearly_data = ?, projections = ?,
			total_price = ?, updated_at = ?
		WHERE id = ?`,
		v.FranchiseeID, v.Label, string(inputs), string(yearly), jsonOrNull(projections), v.TotalPrice, v.UpdatedAt, v.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update valuation %s", v.ID)
	}
	return checkRowsAffected(res, v.ID)
}

// GetValuation fetches a valuation by ID. Returns (nil, nil) if absent.
func (s *SQLiteStore) GetValuation(ctx context.Context, id string) (*model.Valuation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(franchisee_id, ''), label, inputs, yearly_data, projections, total_price, created_at, updated_at
		FROM valuations WHERE id = ?`, id)

	v, err := scanSQLiteValuation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get valuation %s", id)
	}
	return v, nil
}

func (s *SQLiteStore) ListValuations(ctx context.Context, filter ValuationFilter) ([]model.Valuation, error) {
	query := `
		SELECT id, COALESCE(franchisee_id, ''), label, inputs, yearly_data, projections, total_price, created_at, updated_at
		FROM valuations WHERE 1=1`
	var args []any

	if filter.FranchiseeID != "" {
		query += ` AND franchisee_id = ?`
		args = append(args, filter.FranchiseeID)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list valuations")
	}
	defer rows.Close()

	var out []model.Valuation
	for rows.Next() {
		v, err := scanSQLiteValuation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan valuation")
		}
		out = append(out, *v)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list iterate")
}

func (s *SQLiteStore) DeleteValuation(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM valuations WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete valuation %s", id)
	}
	return checkRowsAffected(res, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteValuation(row rowScanner) (*model.Valuation, error) {
	var (
		v           model.Valuation
		inputs      string
		yearly      string
		projections sql.NullString
	)
	if err := row.Scan(&v.ID, &v.FranchiseeID, &v.Label, &inputs, &yearly, &projections, &v.TotalPrice, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(inputs), &v.Inputs); err != nil {
		return nil, eris.Wrap(err, "unmarshal inputs")
	}
	if err := json.Unmarshal([]byte(yearly), &v.YearlyData); err != nil {
		return nil, eris.Wrap(err, "unmarshal yearly data")
	}
	if projections.Valid && projections.String != "" {
		if err := json.Unmarshal([]byte(projections.String), &v.Projections); err != nil {
			return nil, eris.Wrap(err, "unmarshal projections")
		}
	}
	return &v, nil
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("valuation not found: %s", id)
	}
	return nil
}

func jsonOrNull(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
