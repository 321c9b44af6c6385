// Package amortization builds monthly mortgage payment schedules for the two
// repayment methods the planner supports. It is pure: no storage, no context.
package amortization

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Method selects the repayment formula.
type Method string

const (
	// MethodFixed is the standard annuity: a constant payment that retires the
	// balance exactly at the final month.
	MethodFixed Method = "fixed"
	// MethodDecliningBalance repays a constant slice of principal each month;
	// interest (hence the total payment) shrinks as the balance falls.
	MethodDecliningBalance Method = "declining_balance"
)

var (
	ErrInvalidPrincipal = errors.New("principal must be a positive amount")
	ErrInvalidTerm      = errors.New("term must be at least one month")
	ErrNegativeRate     = errors.New("annual interest rate cannot be negative")
	ErrUnknownMethod    = errors.New("unknown amortization method")
)

// Installment is one month of the schedule. Amounts are rounded to two
// decimal places; the final month absorbs the rounding remainder so the
// balance lands on exactly zero.
type Installment struct {
	Month            int     `json:"month"`
	Payment          float64 `json:"payment"`
	PrincipalPortion float64 `json:"principal_portion"`
	InterestPortion  float64 `json:"interest_portion"`
	RemainingBalance float64 `json:"remaining_balance"`
}

// YearTotal rolls twelve installments up into one calendar-year line.
type YearTotal struct {
	Year          int     `json:"year"`
	TotalPaid     float64 `json:"total_paid"`
	PrincipalPaid float64 `json:"principal_paid"`
	InterestPaid  float64 `json:"interest_paid"`
	EndingBalance float64 `json:"ending_balance"`
}

// Schedule is a full amortization run.
type Schedule struct {
	Months              []Installment `json:"months"`
	Years               []YearTotal   `json:"years"`
	FirstMonthlyPayment float64       `json:"first_monthly_payment"`
	LastMonthlyPayment  float64       `json:"last_monthly_payment"`
}

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	one     = decimal.NewFromInt(1)
)

// Build computes the monthly schedule for a loan. annualRate is percent per
// year (11 means 11%). Zero rate degenerates to equal principal-only payments.
func Build(principal, annualRate float64, termMonths int, method Method) (*Schedule, error) {
	if principal <= 0 {
		return nil, ErrInvalidPrincipal
	}
	if termMonths < 1 {
		return nil, ErrInvalidTerm
	}
	if annualRate < 0 {
		return nil, ErrNegativeRate
	}
	if method != MethodFixed && method != MethodDecliningBalance {
		return nil, ErrUnknownMethod
	}

	p := decimal.NewFromFloat(principal)
	monthlyRate := decimal.NewFromFloat(annualRate).Div(hundred).Div(twelve)

	var fixedPayment, constantPrincipal decimal.Decimal
	switch method {
	case MethodFixed:
		fixedPayment = annuityPayment(p, monthlyRate, termMonths)
	case MethodDecliningBalance:
		constantPrincipal = p.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
	}

	sched := &Schedule{Months: make([]Installment, 0, termMonths)}
	balance := p

	for m := 1; m <= termMonths; m++ {
		interest := balance.Mul(monthlyRate).Round(2)

		var principalPortion decimal.Decimal
		switch method {
		case MethodFixed:
			principalPortion = fixedPayment.Sub(interest)
		case MethodDecliningBalance:
			principalPortion = constantPrincipal
		}
		// Final month clears whatever is left, absorbing rounding drift.
		if m == termMonths || principalPortion.GreaterThan(balance) {
			principalPortion = balance
		}

		payment := principalPortion.Add(interest)
		balance = balance.Sub(principalPortion)

		sched.Months = append(sched.Months, Installment{
			Month:            m,
			Payment:          payment.Round(2).InexactFloat64(),
			PrincipalPortion: principalPortion.Round(2).InexactFloat64(),
			InterestPortion:  interest.InexactFloat64(),
			RemainingBalance: balance.Round(2).InexactFloat64(),
		})
	}

	sched.FirstMonthlyPayment = sched.Months[0].Payment
	sched.LastMonthlyPayment = sched.Months[len(sched.Months)-1].Payment
	sched.Years = rollUpYears(sched.Months)
	return sched, nil
}

// MonthlyPayment returns the first month's payment without materializing the
// whole schedule. The projection engine calls this once per simulated year.
func MonthlyPayment(principal, annualRate float64, termMonths int, method Method) (float64, error) {
	if principal <= 0 {
		return 0, ErrInvalidPrincipal
	}
	if termMonths < 1 {
		return 0, ErrInvalidTerm
	}
	if annualRate < 0 {
		return 0, ErrNegativeRate
	}

	p := decimal.NewFromFloat(principal)
	monthlyRate := decimal.NewFromFloat(annualRate).Div(hundred).Div(twelve)
	firstInterest := p.Mul(monthlyRate).Round(2)

	switch method {
	case MethodFixed:
		return annuityPayment(p, monthlyRate, termMonths).Round(2).InexactFloat64(), nil
	case MethodDecliningBalance:
		constantPrincipal := p.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
		if termMonths == 1 {
			constantPrincipal = p
		}
		return constantPrincipal.Add(firstInterest).Round(2).InexactFloat64(), nil
	}
	return 0, ErrUnknownMethod
}

// annuityPayment = P * i / (1 - (1+i)^-n); P/n when the rate is zero.
func annuityPayment(principal, monthlyRate decimal.Decimal, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	if monthlyRate.IsZero() {
		return principal.Div(n)
	}
	growth := one.Add(monthlyRate).Pow(n)
	return principal.Mul(monthlyRate).Mul(growth).Div(growth.Sub(one))
}

func rollUpYears(months []Installment) []YearTotal {
	var years []YearTotal
	for i, inst := range months {
		y := i / 12
		if y == len(years) {
			years = append(years, YearTotal{Year: y + 1})
		}
		years[y].TotalPaid += inst.Payment
		years[y].PrincipalPaid += inst.PrincipalPortion
		years[y].InterestPaid += inst.InterestPortion
		years[y].EndingBalance = inst.RemainingBalance
	}
	for i := range years {
		years[i].TotalPaid = round2(years[i].TotalPaid)
		years[i].PrincipalPaid = round2(years[i].PrincipalPaid)
		years[i].InterestPaid = round2(years[i].InterestPaid)
	}
	return years
}

func round2(v float64) float64 {
	d := decimal.NewFromFloat(v)
	return d.Round(2).InexactFloat64()
}
