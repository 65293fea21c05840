package franchisee

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/portal-cli/internal/model"
)

func lockedRow(id, name, company, taxID, address, city, state, postal string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "franchisee_name", "company_name", "tax_id",
		"address", "city", "state", "postal_code",
	}).AddRow(id, name, company, taxID, address, city, state, postal)
}

func TestMerge_Success(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, franchisee_name,`).
		WithArgs("f-1").
		WillReturnRows(lockedRow("f-1", "Juan Pérez", "", "B-1234567", "Calle Mayor 1", "Madrid", "", "28001"))
	mock.ExpectQuery(`SELECT id, franchisee_name,`).
		WithArgs("f-2").
		WillReturnRows(lockedRow("f-2", "Juan Perez", "Pérez Hostelería SL", "B-1234567", "", "", "Madrid", ""))

	mock.ExpectExec(`UPDATE franchisee_restaurants SET franchisee_id=\$1`).
		WithArgs("f-1", "f-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mock.ExpectExec(`DELETE FROM profiles WHERE franchisee_id=\$1`).
		WithArgs("f-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM franchisees WHERE id=\$1 AND franchisee_name=\$2`).
		WithArgs("f-2", "Juan Perez").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	mock.ExpectExec(`UPDATE franchisees SET`).
		WithArgs("f-1",
			ptr("Pérez Hostelería SL"), ptr("B-1234567"),
			ptr("Calle Mayor 1"), ptr("Madrid"), ptr("Madrid"), ptr("28001"),
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO merge_audit`).
		WithArgs(pgxmock.AnyArg(), "f-1", []string{"f-2"}, int64(3), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	merged, err := NewMerger(mock).Merge(context.Background(), "f-1", []string{"f-2"})
	require.NoError(t, err)
	require.NotNil(t, merged)

	// Primary keeps its own values, gaps are filled from the duplicate.
	assert.Equal(t, "Juan Pérez", merged.Name)
	assert.Equal(t, "Pérez Hostelería SL", merged.CompanyName)
	assert.Equal(t, "Calle Mayor 1", merged.Address)
	assert.Equal(t, "Madrid", merged.City)
	assert.Equal(t, "Madrid", merged.State)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerge_PrimaryNotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, franchisee_name,`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "franchisee_name", "company_name", "tax_id",
			"address", "city", "state", "postal_code",
		}))
	mock.ExpectRollback()

	merged, err := NewMerger(mock).Merge(context.Background(), "missing", []string{"f-2"})
	assert.Error(t, err)
	assert.Nil(t, merged)
	assert.Contains(t, err.Error(), "not found")

	// No update, delete or audit statements may have run.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerge_DuplicateNotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, franchisee_name,`).
		WithArgs("f-1").
		WillReturnRows(lockedRow("f-1", "Juan Pérez", "", "", "", "", "", ""))
	mock.ExpectQuery(`SELECT id, franchisee_name,`).
		WithArgs("gone").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "franchisee_name", "company_name", "tax_id",
			"address", "city", "state", "postal_code",
		}))
	mock.ExpectRollback()

	merged, err := NewMerger(mock).Merge(context.Background(), "f-1", []string{"gone"})
	assert.Error(t, err)
	assert.Nil(t, merged)
	assert.Contains(t, err.Error(), "gone")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerge_DeleteFailureRollsBack(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, franchisee_name,`).
		WithArgs("f-1").
		WillReturnRows(lockedRow("f-1", "Juan Pérez", "", "", "", "", "", ""))
	mock.ExpectQuery(`SELECT id, franchisee_name,`).
		WithArgs("f-2").
		WillReturnRows(lockedRow("f-2", "Juan Perez", "", "", "", "", "", ""))
	mock.ExpectExec(`UPDATE franchisee_restaurants SET franchisee_id=\$1`).
		WithArgs("f-1", "f-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`DELETE FROM profiles WHERE franchisee_id=\$1`).
		WithArgs("f-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	// Name changed underneath us: the double-keyed delete matches nothing.
	mock.ExpectExec(`DELETE FROM franchisees WHERE id=\$1 AND franchisee_name=\$2`).
		WithArgs("f-2", "Juan Perez").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	merged, err := NewMerger(mock).Merge(context.Background(), "f-1", []string{"f-2"})
	assert.Error(t, err)
	assert.Nil(t, merged)
	assert.Contains(t, err.Error(), "exactly one row")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerge_InputValidation(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	m := NewMerger(mock)
	ctx := context.Background()

	_, err = m.Merge(ctx, "", []string{"f-2"})
	assert.Error(t, err)

	_, err = m.Merge(ctx, "f-1", nil)
	assert.Error(t, err)

	_, err = m.Merge(ctx, "f-1", []string{"f-1"})
	assert.Error(t, err)

	// None of the invalid calls touched the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFillMissingFields(t *testing.T) {
	t.Parallel()

	primary := &model.Franchisee{ID: "p", Name: "Primary", City: "Madrid"}
	dups := []*model.Franchisee{
		{ID: "d1", CompanyName: "First SL", City: "Sevilla"},
		{ID: "d2", CompanyName: "Second SL", TaxID: "B-999"},
	}

	fillMissingFields(primary, dups)

	assert.Equal(t, "First SL", primary.CompanyName) // first non-empty wins
	assert.Equal(t, "B-999", primary.TaxID)
	assert.Equal(t, "Madrid", primary.City) // primary value kept
}

func ptr(s string) *string { return &s }
