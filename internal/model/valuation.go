package model

import "time"

// Valuation is a persisted valuation run for a franchisee's restaurant.
type Valuation struct {
	ID           string           `json:"id"`
	FranchiseeID string           `json:"franchisee_id,omitempty"`
	Label        string           `json:"label,omitempty"`
	Inputs       ValuationInputs  `json:"inputs"`
	YearlyData   []YearlyData     `json:"yearly_data"`
	Projections  []ProjectionData `json:"projections,omitempty"`
	TotalPrice   float64          `json:"total_price"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ValuationInputs holds the per-valuation global parameters. Currency
// amounts describe the baseline year; rates are annual percentages.
type ValuationInputs struct {
	Sales          float64    `json:"sales" yaml:"sales"`
	PacPercentage  float64    `json:"pac_percentage" yaml:"pac_percentage"`
	RentPercentage float64    `json:"rent_percentage" yaml:"rent_percentage"`
	ServiceFees    float64    `json:"service_fees" yaml:"service_fees"`
	Depreciation   float64    `json:"depreciation" yaml:"depreciation"`
	Interest       float64    `json:"interest" yaml:"interest"`
	RentIndex      float64    `json:"rent_index" yaml:"rent_index"`
	Miscell        float64    `json:"miscell" yaml:"miscell"`
	LoanPayment    float64    `json:"loan_payment" yaml:"loan_payment"`
	InflationRate  float64    `json:"inflation_rate" yaml:"inflation_rate"`
	DiscountRate   float64    `json:"discount_rate" yaml:"discount_rate"`
	GrowthRate     float64    `json:"growth_rate" yaml:"growth_rate"`
	ChangeDate     *time.Time `json:"change_date,omitempty" yaml:"change_date,omitempty"`
	EndDate        *time.Time `json:"franchise_end_date,omitempty" yaml:"franchise_end_date,omitempty"`
	RemainingYears float64    `json:"remaining_years" yaml:"remaining_years"`
}

// YearlyData is one user-editable row per projected year.
type YearlyData struct {
	Sales          float64 `json:"sales" yaml:"sales"`
	PacPercentage  float64 `json:"pac_percentage" yaml:"pac_percentage"`
	RentPercentage float64 `json:"rent_percentage" yaml:"rent_percentage"`
	ServiceFees    float64 `json:"service_fees" yaml:"service_fees"`
	Depreciation   float64 `json:"depreciation" yaml:"depreciation"`
	Interest       float64 `json:"interest" yaml:"interest"`
	RentIndex      float64 `json:"rent_index" yaml:"rent_index"`
	Miscell        float64 `json:"miscell" yaml:"miscell"`
	LoanPayment    float64 `json:"loan_payment" yaml:"loan_payment"`
	Reinversion    float64 `json:"reinversion" yaml:"reinversion"`
}

// ProjectionData is one discounted cash-flow slice of a projection.
// Year is the fractional elapsed time at the end of the slice.
type ProjectionData struct {
	YearIndex      int        `json:"year_index"`
	Year           float64    `json:"year"`
	CfValue        float64    `json:"cf_value"`
	PresentValue   float64    `json:"present_value"`
	TimeToNextYear float64    `json:"time_to_next_year"`
	YearData       YearlyData `json:"year_data"`
}
