// Package projection turns a fully-populated plan into a year-by-year
// affordability trajectory and finds the earliest viable purchase year.
package projection

import (
	"errors"
	"fmt"
	"math"

	"homeward-backend/internal/affordability"
	"homeward-backend/internal/amortization"
	"homeward-backend/internal/domain"
)

const (
	// MaxHorizonYears caps the simulation length. Anything longer than a
	// working lifetime produces noise, not planning.
	MaxHorizonYears = 50

	// DefaultMaxLoanToValue is the bank's lending ceiling: the loan may cover
	// at most this share of the house price.
	DefaultMaxLoanToValue = 0.80

	emergencyFundMonths = 6
)

var (
	ErrHorizonNegative = errors.New("horizon must be zero or more years; a target date in the past cannot be simulated")
	ErrHorizonTooLong  = fmt.Errorf("horizon exceeds the maximum of %d years", MaxHorizonYears)
)

// FieldError reports a plan field that is missing or unusable for simulation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("plan field %s: %s", e.Field, e.Reason)
}

// Row is one simulated year. Index 0 is "buy today".
type Row struct {
	YearIndex           int     `json:"year_index"`
	Year                int     `json:"year"`
	HousePrice          float64 `json:"house_price"`
	CumulativeSavings   float64 `json:"cumulative_savings"`
	AnnualIncome        float64 `json:"annual_income"`
	AnnualExpenses      float64 `json:"annual_expenses"`
	LoanAmount          float64 `json:"loan_amount"`
	MonthlyPayment      float64 `json:"monthly_payment"`
	MonthlyBuffer       float64 `json:"monthly_buffer"`
	Affordable          bool    `json:"affordable"`
	TargetEmergencyFund float64 `json:"target_emergency_fund"`
}

// Result is a full run. EarliestViableIndex/Year are nil when no simulated
// year is affordable — callers must treat that explicitly, never as year 0.
type Result struct {
	Rows                []Row `json:"rows"`
	EarliestViableIndex *int  `json:"earliest_viable_index"`
	EarliestViableYear  *int  `json:"earliest_viable_year"`
}

// ViableWithinHorizon reports whether any simulated year is affordable.
func (r *Result) ViableWithinHorizon() bool {
	return r.EarliestViableIndex != nil
}

// Engine drives the simulation. It is stateless apart from configuration and
// safe for concurrent use.
type Engine struct {
	MaxLoanToValue float64
}

func NewEngine() *Engine {
	return &Engine{MaxLoanToValue: DefaultMaxLoanToValue}
}

// Run simulates years 0..plan.HorizonYears inclusive.
//
// Savings follow a uniform recurrence: each year the prior balance (initial
// savings for year 0) grows by the investment return, then that year's net
// cash surplus is added. Rates are percent per year. A family gift of type
// "upfront" joins the savings balance and compounds; "at_purchase" only
// raises down-payment capacity in the year the purchase is tested.
func (e *Engine) Run(plan *domain.Plan) (*Result, error) {
	if plan.HorizonYears < 0 {
		return nil, ErrHorizonNegative
	}
	if plan.HorizonYears > MaxHorizonYears {
		return nil, ErrHorizonTooLong
	}
	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	salaryGrowth := plan.SalaryGrowthRate / 100
	expenseGrowth := plan.ExpenseGrowthRate / 100
	houseGrowth := plan.HouseGrowthRate / 100
	investReturn := plan.InvestmentReturnRate / 100

	baseMonthlyIncome := plan.PrimaryMonthlyIncome + deref(plan.OtherMonthlyIncome)
	if plan.HasCoApplicant {
		baseMonthlyIncome += deref(plan.CoApplicantIncome)
	}
	baseMonthlyOutgoings := plan.MonthlyLivingExpenses + deref(plan.MonthlyNonHousingDebt)
	baseAnnualExpenses := baseMonthlyOutgoings*12 + deref(plan.AnnualInsurancePremium)

	giftUpfront, giftAtPurchase := familyGift(plan)

	savings := plan.InitialSavings + giftUpfront
	res := &Result{Rows: make([]Row, 0, plan.HorizonYears+1)}

	for i := 0; i <= plan.HorizonYears; i++ {
		incomeFactor := math.Pow(1+salaryGrowth, float64(i))
		expenseFactor := math.Pow(1+expenseGrowth, float64(i))

		annualIncome := baseMonthlyIncome * 12 * incomeFactor
		annualExpenses := baseAnnualExpenses * expenseFactor

		savings = savings*(1+investReturn) + (annualIncome - annualExpenses)

		housePrice := plan.TargetHousePrice * math.Pow(1+houseGrowth, float64(i))
		downCapacity := savings + giftAtPurchase
		downPayment := math.Min(downCapacity, housePrice)
		loanAmount := math.Max(housePrice-downPayment, 0)

		var monthlyPayment float64
		if loanAmount > 0 {
			var err error
			monthlyPayment, err = amortization.MonthlyPayment(
				loanAmount, plan.LoanRate, plan.LoanTermYears*12,
				amortization.Method(plan.LoanMethod),
			)
			if err != nil {
				return nil, err
			}
		}

		targetEF := baseMonthlyOutgoings * emergencyFundMonths * expenseFactor

		decision := affordability.Classify(affordability.YearInput{
			AnnualIncome:        annualIncome,
			AnnualExpenses:      annualExpenses,
			LoanMonthlyPayment:  monthlyPayment,
			TargetEmergencyFund: targetEF,
		})

		// Lending ceiling: the buyer must bring at least (1 − maxLTV) of the
		// price as equity, on top of a non-negative buffer.
		requiredEquity := housePrice * (1 - e.MaxLoanToValue)
		affordable := decision.Affordable && downCapacity >= requiredEquity

		row := Row{
			YearIndex:           i,
			Year:                plan.CreatedYear + i,
			HousePrice:          housePrice,
			CumulativeSavings:   savings,
			AnnualIncome:        annualIncome,
			AnnualExpenses:      annualExpenses,
			LoanAmount:          loanAmount,
			MonthlyPayment:      monthlyPayment,
			MonthlyBuffer:       decision.MonthlyBuffer,
			Affordable:          affordable,
			TargetEmergencyFund: targetEF,
		}
		res.Rows = append(res.Rows, row)

		if affordable && res.EarliestViableIndex == nil {
			idx, year := i, row.Year
			res.EarliestViableIndex = &idx
			res.EarliestViableYear = &year
		}
	}

	return res, nil
}

// validatePlan fails fast on fields the simulation cannot default. Optional
// streams (other income, co-applicant income, non-housing debt, insurance,
// family support amount) default to zero when unset; the target price, the
// primary income and the loan shape never do.
func validatePlan(plan *domain.Plan) error {
	if plan.TargetHousePrice <= 0 {
		return &FieldError{Field: "target_house_price", Reason: "must be a positive amount"}
	}
	if plan.PrimaryMonthlyIncome <= 0 {
		return &FieldError{Field: "primary_monthly_income", Reason: "must be a positive amount"}
	}
	if plan.InitialSavings < 0 {
		return &FieldError{Field: "initial_savings", Reason: "cannot be negative"}
	}
	if plan.MonthlyLivingExpenses < 0 {
		return &FieldError{Field: "monthly_living_expenses", Reason: "cannot be negative"}
	}
	if plan.LoanTermYears < 1 {
		return &FieldError{Field: "loan_term_years", Reason: "must be at least one year"}
	}
	if plan.LoanRate < 0 {
		return &FieldError{Field: "loan_rate", Reason: "cannot be negative"}
	}
	switch plan.LoanMethod {
	case domain.LoanMethodFixed, domain.LoanMethodDecliningBalance:
	default:
		return &FieldError{Field: "loan_method", Reason: "must be fixed or declining_balance"}
	}
	if plan.HasFamilySupport {
		if plan.FamilySupportAmount == nil || *plan.FamilySupportAmount < 0 {
			return &FieldError{Field: "family_support_amount", Reason: "must be set and non-negative when family support is enabled"}
		}
		if plan.FamilySupportType == nil {
			return &FieldError{Field: "family_support_type", Reason: "must be set when family support is enabled"}
		}
		switch *plan.FamilySupportType {
		case domain.FamilySupportUpfront, domain.FamilySupportAtPurchase:
		default:
			return &FieldError{Field: "family_support_type", Reason: "must be upfront or at_purchase"}
		}
	}
	return nil
}

func familyGift(plan *domain.Plan) (upfront, atPurchase float64) {
	if !plan.HasFamilySupport || plan.FamilySupportAmount == nil || plan.FamilySupportType == nil {
		return 0, 0
	}
	switch *plan.FamilySupportType {
	case domain.FamilySupportUpfront:
		return *plan.FamilySupportAmount, 0
	case domain.FamilySupportAtPurchase:
		return 0, *plan.FamilySupportAmount
	}
	return 0, 0
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
