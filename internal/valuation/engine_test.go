package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/portal-cli/internal/model"
)

func baseYear() model.YearlyData {
	return model.YearlyData{
		Sales:          1000,
		PacPercentage:  50,
		RentPercentage: 10,
	}
}

func TestProject_EmptyHorizon(t *testing.T) {
	t.Parallel()

	res := Project(model.ValuationInputs{RemainingYears: 0}, []model.YearlyData{baseYear()})
	assert.Empty(t, res.Projections)
	assert.Zero(t, res.TotalPrice)

	res = Project(model.ValuationInputs{RemainingYears: 3}, nil)
	assert.Empty(t, res.Projections)
	assert.Zero(t, res.TotalPrice)
}

func TestProject_WorkedExample(t *testing.T) {
	t.Parallel()

	inputs := model.ValuationInputs{RemainingYears: 1}
	res := Project(inputs, []model.YearlyData{baseYear()})

	require.Len(t, res.Projections, 1)
	p := res.Projections[0]

	// pac 500 - rent 100 - fees 50 = 350; no discounting at rate 0.
	assert.InDelta(t, 350.0, p.CfValue, 0.0001)
	assert.InDelta(t, 350.0, p.PresentValue, 0.0001)
	assert.InDelta(t, 1.0, p.TimeToNextYear, 0.0001)
	assert.InDelta(t, 350.0, res.TotalPrice, 0.0001)
}

func TestProject_ZeroSalesYearConsumesTime(t *testing.T) {
	t.Parallel()

	inputs := model.ValuationInputs{RemainingYears: 2}
	yearly := []model.YearlyData{{}, baseYear()}
	res := Project(inputs, yearly)

	require.Len(t, res.Projections, 1)
	p := res.Projections[0]
	assert.Equal(t, 1, p.YearIndex)
	// The skipped year still advanced elapsed time, so the slice ends at year 2.
	assert.InDelta(t, 2.0, p.Year, 0.0001)
}

func TestProject_OnlyMiscellCompounds(t *testing.T) {
	t.Parallel()

	inputs := model.ValuationInputs{RemainingYears: 3, InflationRate: 10}
	yd := baseYear()
	yd.Miscell = 100
	yearly := []model.YearlyData{yd, yd, yd}
	res := Project(inputs, yearly)
	require.Len(t, res.Projections, 3)

	// cfLibre(i) = 350 - miscell(i), miscell(i) = 100 * 1.1^i.
	assert.InDelta(t, 250.0, res.Projections[0].CfValue, 0.0001)
	assert.InDelta(t, 350.0-100*1.1, res.Projections[1].CfValue, 0.0001)
	assert.InDelta(t, 350.0-100*1.1*1.1, res.Projections[2].CfValue, 0.0001)
}

func TestProject_PartialFinalYear(t *testing.T) {
	t.Parallel()

	inputs := model.ValuationInputs{RemainingYears: 2.3}
	yearly := []model.YearlyData{baseYear(), baseYear(), baseYear()}
	res := Project(inputs, yearly)
	require.Len(t, res.Projections, 3)

	last := res.Projections[2]
	assert.InDelta(t, 0.3, last.TimeToNextYear, 0.0001)
	assert.InDelta(t, 350.0*0.3, last.CfValue, 0.0001)
	assert.InDelta(t, 2.3, last.Year, 0.0001)
}

func TestProject_DiscountingIsMonotonic(t *testing.T) {
	t.Parallel()

	yearly := []model.YearlyData{baseYear(), baseYear()}
	prev := math.Inf(1)
	for _, rate := range []float64{0, 5, 10, 25, 50} {
		res := Project(model.ValuationInputs{RemainingYears: 2, DiscountRate: rate}, yearly)
		require.Len(t, res.Projections, 2)
		assert.Less(t, res.TotalPrice, prev, "rate %v", rate)
		prev = res.TotalPrice
	}
}

func TestProject_DiscountAtFractionalTime(t *testing.T) {
	t.Parallel()

	inputs := model.ValuationInputs{RemainingYears: 1.5, DiscountRate: 10}
	yearly := []model.YearlyData{baseYear(), baseYear()}
	res := Project(inputs, yearly)
	require.Len(t, res.Projections, 2)

	first := res.Projections[0]
	assert.InDelta(t, 350.0/1.10, first.PresentValue, 0.0001)

	second := res.Projections[1]
	assert.InDelta(t, 350.0*0.5/math.Pow(1.10, 1.5), second.PresentValue, 0.0001)
}

func TestProject_ReinversionAndDepreciation(t *testing.T) {
	t.Parallel()

	yd := baseYear()
	yd.Reinversion = 40
	yd.Depreciation = 25
	res := Project(model.ValuationInputs{RemainingYears: 1}, []model.YearlyData{yd})
	require.Len(t, res.Projections, 1)

	// 350 - 40 reinvestment + 25 depreciation added back.
	assert.InDelta(t, 335.0, res.Projections[0].CfValue, 0.0001)
}

func TestProject_HorizonShorterThanTable(t *testing.T) {
	t.Parallel()

	yearly := []model.YearlyData{baseYear(), baseYear(), baseYear(), baseYear()}
	res := Project(model.ValuationInputs{RemainingYears: 2}, yearly)
	assert.Len(t, res.Projections, 2)
}

func TestValidateInputs(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateInputs(model.ValuationInputs{RemainingYears: 2, DiscountRate: 8}))
	assert.Error(t, ValidateInputs(model.ValuationInputs{RemainingYears: -1}))
	assert.Error(t, ValidateInputs(model.ValuationInputs{DiscountRate: -100}))
	assert.Error(t, ValidateInputs(model.ValuationInputs{InflationRate: -150}))
}
