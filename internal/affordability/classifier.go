// Package affordability decides whether one simulated year's cash flow covers
// the mortgage payment. Stateless: the only threshold is the zero-buffer line.
// Loan-to-value gating belongs to the projection engine, not here.
package affordability

// YearInput is one simulated year's totals as produced by the projection engine.
type YearInput struct {
	AnnualIncome        float64
	AnnualExpenses      float64
	LoanMonthlyPayment  float64
	TargetEmergencyFund float64
}

// Decision is the classification for one year.
type Decision struct {
	MonthlyBuffer float64 `json:"monthly_buffer"`
	Affordable    bool    `json:"affordable"`
}

// Classify computes the monthly buffer left after the loan payment.
// Buffer = (income − expenses) / 12 − monthly payment; affordable iff ≥ 0.
func Classify(in YearInput) Decision {
	buffer := (in.AnnualIncome-in.AnnualExpenses)/12 - in.LoanMonthlyPayment
	return Decision{
		MonthlyBuffer: buffer,
		Affordable:    buffer >= 0,
	}
}
