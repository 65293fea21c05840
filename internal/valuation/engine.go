// Package valuation implements the discounted cash-flow projection engine
// for franchise restaurant valuations.
package valuation

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/portal-cli/internal/model"
)

// serviceFeeRate is the franchise service fee charged on sales. Fixed by
// the franchise agreement, not user-configurable.
const serviceFeeRate = 0.05

// Result holds the projection slices and the headline valuation number.
type Result struct {
	Projections []model.ProjectionData `json:"projections"`
	TotalPrice  float64                `json:"total_price"`
}

// Project computes a multi-year discounted cash-flow projection.
//
// One slice is produced per yearly row with non-zero sales, discounted to
// present value at the fractional elapsed time of the slice end. Rows with
// zero sales contribute no cash flow but still consume projection time.
// The total horizon may be fractional; the last slice is scaled down to
// the remaining fraction of a year.
//
// Only the miscellaneous cost compounds with inflation: year i>0 uses the
// year-0 value inflated at inputs.InflationRate. All other fields are
// taken from each row as entered.
func Project(inputs model.ValuationInputs, yearly []model.YearlyData) Result {
	var res Result
	if inputs.RemainingYears <= 0 || len(yearly) == 0 {
		return res
	}

	currentTime := 0.0
	for i, yd := range yearly {
		timeToNextYear := math.Min(1, inputs.RemainingYears-currentTime)
		if timeToNextYear <= 0 {
			break
		}

		if yd.Sales == 0 {
			currentTime += timeToNextYear
			continue
		}

		pacAmount := yd.Sales * yd.PacPercentage / 100
		rentAmount := yd.Sales * yd.RentPercentage / 100
		serviceFees := yd.Sales * serviceFeeRate

		miscellAmount := yd.Miscell
		if i > 0 {
			miscellAmount = yearly[0].Miscell * math.Pow(1+inputs.InflationRate/100, float64(i))
		}

		cashflow := pacAmount - rentAmount - serviceFees - yd.RentIndex - miscellAmount - yd.LoanPayment
		cashAfterReinv := cashflow - yd.Reinversion
		cfLibre := cashAfterReinv + yd.Depreciation

		cfValue := cfLibre
		if timeToNextYear < 1 {
			cfValue = cfLibre * timeToNextYear
		}

		discountTime := currentTime + timeToNextYear
		presentValue := cfValue / math.Pow(1+inputs.DiscountRate/100, discountTime)

		res.Projections = append(res.Projections, model.ProjectionData{
			YearIndex:      i,
			Year:           discountTime,
			CfValue:        cfValue,
			PresentValue:   presentValue,
			TimeToNextYear: timeToNextYear,
			YearData:       yd,
		})
		res.TotalPrice += presentValue

		currentTime += timeToNextYear
	}

	return res
}

// ValidateInputs rejects inputs that would make the projection produce
// non-finite numbers. The engine itself does not guard these; callers
// should validate before rendering results.
func ValidateInputs(inputs model.ValuationInputs) error {
	if inputs.RemainingYears < 0 {
		return eris.New("valuation: remaining years must not be negative")
	}
	if inputs.DiscountRate <= -100 {
		return eris.New("valuation: discount rate must be greater than -100%")
	}
	if inputs.InflationRate <= -100 {
		return eris.New("valuation: inflation rate must be greater than -100%")
	}
	return nil
}
