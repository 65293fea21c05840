package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/portal-cli/internal/model"
)

func TestRemainingYears(t *testing.T) {
	t.Parallel()

	change := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		change time.Time
		end    time.Time
		want   float64
	}{
		{"four years", change, change.AddDate(4, 0, 0), 4.0},
		{"half year", change, change.Add(time.Duration(365.25/2*24) * time.Hour), 0.5},
		{"end before change clamps to zero", change, change.AddDate(-1, 0, 0), 0},
		{"zero change date", time.Time{}, change, 0},
		{"zero end date", change, time.Time{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, RemainingYears(tt.change, tt.end), 0.01)
		})
	}
}

func TestDeriveYearSlots(t *testing.T) {
	t.Parallel()

	assert.Nil(t, DeriveYearSlots(0, nil))
	assert.Len(t, DeriveYearSlots(3, nil), 3)
	assert.Len(t, DeriveYearSlots(2.3, nil), 3)
	assert.Len(t, DeriveYearSlots(0.1, nil), 1)
}

func TestDeriveYearSlots_PreservesEdits(t *testing.T) {
	t.Parallel()

	prior := []model.YearlyData{
		{Sales: 1000, PacPercentage: 55},
		{Sales: 1100, PacPercentage: 54},
	}

	// Growing the horizon keeps the edited rows and zeroes the new ones.
	slots := DeriveYearSlots(4, prior)
	require.Len(t, slots, 4)
	assert.Equal(t, prior[0], slots[0])
	assert.Equal(t, prior[1], slots[1])
	assert.Zero(t, slots[2].Sales)
	assert.Zero(t, slots[3].Sales)

	// Shrinking the horizon truncates.
	slots = DeriveYearSlots(1, prior)
	require.Len(t, slots, 1)
	assert.Equal(t, prior[0], slots[0])
}
