package valuation

import (
	"math"
	"time"

	"github.com/sells-group/portal-cli/internal/model"
)

const daysPerYear = 365.25

// RemainingYears returns the fractional number of years between the
// ownership change date and the franchise end date, clamped at zero.
func RemainingYears(changeDate, endDate time.Time) float64 {
	if changeDate.IsZero() || endDate.IsZero() {
		return 0
	}
	years := endDate.Sub(changeDate).Hours() / 24 / daysPerYear
	if years < 0 {
		return 0
	}
	return years
}

// DeriveYearSlots re-derives the per-year editable table for a new horizon
// length. Rows at overlapping year indexes carry over prior edits; rows
// beyond the prior table are zeroed. The slot count is ceil(remainingYears).
func DeriveYearSlots(remainingYears float64, prior []model.YearlyData) []model.YearlyData {
	if remainingYears <= 0 {
		return nil
	}
	n := int(math.Ceil(remainingYears))
	slots := make([]model.YearlyData, n)
	for i := 0; i < n && i < len(prior); i++ {
		slots[i] = prior[i]
	}
	return slots
}
