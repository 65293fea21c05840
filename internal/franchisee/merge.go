package franchisee

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/portal-cli/internal/db"
	"github.com/sells-group/portal-cli/internal/model"
)

// Merger consolidates duplicate franchisees onto a surviving primary
// record. The whole sequence runs in one transaction: restaurant
// reassignment, duplicate deletion, and the golden-record update either
// all land or none do.
type Merger struct {
	pool db.Pool
}

// NewMerger creates a Merger.
func NewMerger(pool db.Pool) *Merger {
	return &Merger{pool: pool}
}

// Merge absorbs the given duplicates into the primary franchisee:
//
//  1. Verify the primary and every duplicate exist (fail fast, before any
//     mutation). Rows are locked for the duration of the transaction so
//     two advisors cannot merge overlapping records concurrently.
//  2. Reassign each duplicate's restaurant assignments to the primary.
//  3. Delete each duplicate, keyed on both id and name as a safety check
//     against accidental mass deletion.
//  4. Fill the primary's empty identity fields from the first duplicate
//     that has a value, and persist the merged record.
//  5. Record an audit row.
//
// On any failure the transaction rolls back and nothing is altered.
func (m *Merger) Merge(ctx context.Context, primaryID string, duplicateIDs []string) (*model.Franchisee, error) {
	if primaryID == "" {
		return nil, eris.New("merge: primary id is required")
	}
	if len(duplicateIDs) == 0 {
		return nil, eris.New("merge: at least one duplicate id is required")
	}
	for _, id := range duplicateIDs {
		if id == "" {
			return nil, eris.New("merge: duplicate with empty id")
		}
		if id == primaryID {
			return nil, eris.Errorf("merge: primary %s listed as its own duplicate", primaryID)
		}
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "merge: begin tx")
	}
	defer tx.Rollback(ctx)

	primary, err := lockFranchisee(ctx, tx, primaryID)
	if err != nil {
		return nil, err
	}
	if primary == nil {
		return nil, eris.Errorf("merge: primary franchisee %s not found", primaryID)
	}

	duplicates := make([]*model.Franchisee, 0, len(duplicateIDs))
	for _, id := range duplicateIDs {
		dup, err := lockFranchisee(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if dup == nil {
			return nil, eris.Errorf("merge: duplicate franchisee %s not found", id)
		}
		duplicates = append(duplicates, dup)
	}

	var reassigned int64
	for _, dup := range duplicates {
		tag, err := tx.Exec(ctx,
			`UPDATE franchisee_restaurants SET franchisee_id=$1 WHERE franchisee_id=$2`,
			primary.ID, dup.ID,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "merge: reassign restaurants of %s", dup.ID)
		}
		reassigned += tag.RowsAffected()

		if _, err := tx.Exec(ctx,
			`DELETE FROM profiles WHERE franchisee_id=$1`, dup.ID,
		); err != nil {
			return nil, eris.Wrapf(err, "merge: delete profile of %s", dup.ID)
		}

		// Double-keyed on id and name so a stale id can never wipe an
		// unrelated record.
		tag, err = tx.Exec(ctx,
			`DELETE FROM franchisees WHERE id=$1 AND franchisee_name=$2`,
			dup.ID, dup.Name,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "merge: delete duplicate %s", dup.ID)
		}
		if tag.RowsAffected() != 1 {
			return nil, eris.Errorf("merge: duplicate %s (%s) did not match exactly one row", dup.ID, dup.Name)
		}

		zap.L().Debug("merge: duplicate absorbed",
			zap.String("duplicate_id", dup.ID),
			zap.String("primary_id", primary.ID),
		)
	}

	fillMissingFields(primary, duplicates)

	if _, err := tx.Exec(ctx, `
		UPDATE franchisees SET
			company_name=$2, tax_id=$3, address=$4, city=$5, state=$6, postal_code=$7,
			updated_at=now()
		WHERE id=$1`,
		primary.ID,
		nilIfEmpty(primary.CompanyName), nilIfEmpty(primary.TaxID),
		nilIfEmpty(primary.Address), nilIfEmpty(primary.City),
		nilIfEmpty(primary.State), nilIfEmpty(primary.PostalCode),
	); err != nil {
		return nil, eris.Wrapf(err, "merge: update primary %s", primary.ID)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO merge_audit (id, primary_id, duplicate_ids, reassigned, merged_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), primary.ID, duplicateIDs, reassigned, time.Now().UTC(),
	); err != nil {
		return nil, eris.Wrap(err, "merge: insert audit row")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "merge: commit tx")
	}

	zap.L().Info("merge complete",
		zap.String("primary_id", primary.ID),
		zap.Int("duplicates", len(duplicates)),
		zap.Int64("restaurants_reassigned", reassigned),
	)

	return primary, nil
}

// lockFranchisee loads a franchisee row under FOR UPDATE within the merge
// transaction. Returns (nil, nil) if the row does not exist.
func lockFranchisee(ctx context.Context, tx pgx.Tx, id string) (*model.Franchisee, error) {
	f := &model.Franchisee{}
	err := tx.QueryRow(ctx, `
		SELECT id, franchisee_name,
			COALESCE(company_name, ''), COALESCE(tax_id, ''),
			COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(postal_code, '')
		FROM franchisees WHERE id=$1 FOR UPDATE`, id,
	).Scan(&f.ID, &f.Name, &f.CompanyName, &f.TaxID, &f.Address, &f.City, &f.State, &f.PostalCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "merge: load franchisee %s", id)
	}
	return f, nil
}

// fillMissingFields keeps the primary's value for each identity field when
// present, otherwise falls back to the first duplicate with a value.
func fillMissingFields(primary *model.Franchisee, duplicates []*model.Franchisee) {
	for _, dup := range duplicates {
		if primary.CompanyName == "" {
			primary.CompanyName = dup.CompanyName
		}
		if primary.TaxID == "" {
			primary.TaxID = dup.TaxID
		}
		if primary.Address == "" {
			primary.Address = dup.Address
		}
		if primary.City == "" {
			primary.City = dup.City
		}
		if primary.State == "" {
			primary.State = dup.State
		}
		if primary.PostalCode == "" {
			primary.PostalCode = dup.PostalCode
		}
	}
}
