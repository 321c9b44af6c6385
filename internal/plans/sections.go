package plans

import (
	"homeward-backend/internal/domain"
)

// Each section has its own input struct listing exactly the plan fields it
// owns; the apply function for a section can only ever touch those fields.
// This is the static section-to-field-set mapping, enforced at compile time:
// a handler cannot write another section's fields because its input type
// simply has nowhere to carry them.
//
// Change-detection policy, per field: a nil pointer means "not submitted" and
// leaves the stored value alone. An explicit value — including an explicit
// zero — is compared against the stored value and applied when different.
// Zero and null are never treated as equivalent: a deliberate reset to zero
// is a real change and triggers recomputation.

// IntakeInput owns the household basics entered in step one.
type IntakeInput struct {
	TargetHousePrice      *float64 `json:"target_house_price"`
	ConfirmedPurchaseYear *int     `json:"confirmed_purchase_year"`
	HorizonYears          *int     `json:"horizon_years"`
	InitialSavings        *float64 `json:"initial_savings"`
	PrimaryMonthlyIncome  *float64 `json:"primary_monthly_income"`
	HasCoApplicant        *bool    `json:"has_co_applicant"`
	CoApplicantIncome     *float64 `json:"co_applicant_income"`
	OtherMonthlyIncome    *float64 `json:"other_monthly_income"`
}

// FamilySupportInput owns the family gift fields.
type FamilySupportInput struct {
	HasFamilySupport    *bool    `json:"has_family_support"`
	FamilySupportAmount *float64 `json:"family_support_amount"`
	FamilySupportType   *string  `json:"family_support_type"`
}

// SpendingInput owns recurring outgoings.
type SpendingInput struct {
	MonthlyLivingExpenses  *float64 `json:"monthly_living_expenses"`
	MonthlyNonHousingDebt  *float64 `json:"monthly_non_housing_debt"`
	AnnualInsurancePremium *float64 `json:"annual_insurance_premium"`
}

// AssumptionsInput owns the market and loan assumptions.
type AssumptionsInput struct {
	SalaryGrowthRate     *float64 `json:"salary_growth_rate"`
	ExpenseGrowthRate    *float64 `json:"expense_growth_rate"`
	InvestmentReturnRate *float64 `json:"investment_return_rate"`
	HouseGrowthRate      *float64 `json:"house_growth_rate"`
	LoanRate             *float64 `json:"loan_rate"`
	LoanTermYears        *int     `json:"loan_term_years"`
	LoanMethod           *string  `json:"loan_method"`
}

func applyIntake(plan *domain.Plan, in *IntakeInput) (bool, error) {
	v := newFieldCheck()
	changed := false

	if in.TargetHousePrice != nil {
		if *in.TargetHousePrice <= 0 {
			v.add("target_house_price", "must be a positive amount")
		} else {
			setFloat(&plan.TargetHousePrice, *in.TargetHousePrice, &changed)
		}
	}
	if in.InitialSavings != nil {
		if *in.InitialSavings < 0 {
			v.add("initial_savings", "cannot be negative")
		} else {
			setFloat(&plan.InitialSavings, *in.InitialSavings, &changed)
		}
	}
	if in.PrimaryMonthlyIncome != nil {
		if *in.PrimaryMonthlyIncome <= 0 {
			v.add("primary_monthly_income", "must be a positive amount")
		} else {
			setFloat(&plan.PrimaryMonthlyIncome, *in.PrimaryMonthlyIncome, &changed)
		}
	}
	if in.HasCoApplicant != nil {
		setBool(&plan.HasCoApplicant, *in.HasCoApplicant, &changed)
	}
	if in.CoApplicantIncome != nil {
		if *in.CoApplicantIncome < 0 {
			v.add("co_applicant_income", "cannot be negative")
		} else {
			setFloatPtr(&plan.CoApplicantIncome, *in.CoApplicantIncome, &changed)
		}
	}
	if in.OtherMonthlyIncome != nil {
		if *in.OtherMonthlyIncome < 0 {
			v.add("other_monthly_income", "cannot be negative")
		} else {
			setFloatPtr(&plan.OtherMonthlyIncome, *in.OtherMonthlyIncome, &changed)
		}
	}

	// Horizon and confirmed purchase year stay mutually derivable: whichever
	// the client sends, both are rewritten from it.
	switch {
	case in.ConfirmedPurchaseYear != nil:
		horizon := *in.ConfirmedPurchaseYear - plan.CreatedYear
		if horizon < 0 {
			v.add("confirmed_purchase_year", "cannot be before the plan's creation year")
		} else {
			setHorizon(plan, horizon, &changed)
		}
	case in.HorizonYears != nil:
		if *in.HorizonYears < 0 {
			v.add("horizon_years", "cannot be negative")
		} else {
			setHorizon(plan, *in.HorizonYears, &changed)
		}
	}

	return changed, v.err()
}

func applyFamilySupport(plan *domain.Plan, in *FamilySupportInput) (bool, error) {
	v := newFieldCheck()
	changed := false

	if in.HasFamilySupport != nil {
		setBool(&plan.HasFamilySupport, *in.HasFamilySupport, &changed)
	}
	if in.FamilySupportAmount != nil {
		if *in.FamilySupportAmount < 0 {
			v.add("family_support_amount", "cannot be negative")
		} else {
			setFloatPtr(&plan.FamilySupportAmount, *in.FamilySupportAmount, &changed)
		}
	}
	if in.FamilySupportType != nil {
		typ := domain.FamilySupportType(*in.FamilySupportType)
		switch typ {
		case domain.FamilySupportUpfront, domain.FamilySupportAtPurchase:
			if plan.FamilySupportType == nil || *plan.FamilySupportType != typ {
				plan.FamilySupportType = &typ
				changed = true
			}
		default:
			v.add("family_support_type", "must be upfront or at_purchase")
		}
	}
	if plan.HasFamilySupport && plan.FamilySupportAmount == nil {
		v.add("family_support_amount", "required when family support is enabled")
	}
	if plan.HasFamilySupport && plan.FamilySupportType == nil {
		v.add("family_support_type", "required when family support is enabled")
	}

	return changed, v.err()
}

func applySpending(plan *domain.Plan, in *SpendingInput) (bool, error) {
	v := newFieldCheck()
	changed := false

	if in.MonthlyLivingExpenses != nil {
		if *in.MonthlyLivingExpenses < 0 {
			v.add("monthly_living_expenses", "cannot be negative")
		} else {
			setFloat(&plan.MonthlyLivingExpenses, *in.MonthlyLivingExpenses, &changed)
		}
	}
	if in.MonthlyNonHousingDebt != nil {
		if *in.MonthlyNonHousingDebt < 0 {
			v.add("monthly_non_housing_debt", "cannot be negative")
		} else {
			setFloatPtr(&plan.MonthlyNonHousingDebt, *in.MonthlyNonHousingDebt, &changed)
		}
	}
	if in.AnnualInsurancePremium != nil {
		if *in.AnnualInsurancePremium < 0 {
			v.add("annual_insurance_premium", "cannot be negative")
		} else {
			setFloatPtr(&plan.AnnualInsurancePremium, *in.AnnualInsurancePremium, &changed)
		}
	}

	return changed, v.err()
}

func applyAssumptions(plan *domain.Plan, in *AssumptionsInput) (bool, error) {
	v := newFieldCheck()
	changed := false

	rate := func(field string, dst *float64, val *float64) {
		if val == nil {
			return
		}
		if *val <= -100 || *val > 100 {
			v.add(field, "must be a percentage between -100 and 100")
			return
		}
		setFloat(dst, *val, &changed)
	}
	rate("salary_growth_rate", &plan.SalaryGrowthRate, in.SalaryGrowthRate)
	rate("expense_growth_rate", &plan.ExpenseGrowthRate, in.ExpenseGrowthRate)
	rate("investment_return_rate", &plan.InvestmentReturnRate, in.InvestmentReturnRate)
	rate("house_growth_rate", &plan.HouseGrowthRate, in.HouseGrowthRate)

	if in.LoanRate != nil {
		if *in.LoanRate < 0 || *in.LoanRate > 100 {
			v.add("loan_rate", "must be a percentage between 0 and 100")
		} else {
			setFloat(&plan.LoanRate, *in.LoanRate, &changed)
		}
	}
	if in.LoanTermYears != nil {
		if *in.LoanTermYears < 1 || *in.LoanTermYears > 50 {
			v.add("loan_term_years", "must be between 1 and 50 years")
		} else if *in.LoanTermYears != plan.LoanTermYears {
			plan.LoanTermYears = *in.LoanTermYears
			changed = true
		}
	}
	if in.LoanMethod != nil {
		method := domain.LoanMethod(*in.LoanMethod)
		switch method {
		case domain.LoanMethodFixed, domain.LoanMethodDecliningBalance:
			if method != plan.LoanMethod {
				plan.LoanMethod = method
				changed = true
			}
		default:
			v.add("loan_method", "must be fixed or declining_balance")
		}
	}

	return changed, v.err()
}

func setHorizon(plan *domain.Plan, horizon int, changed *bool) {
	confirmed := plan.CreatedYear + horizon
	if plan.HorizonYears != horizon {
		plan.HorizonYears = horizon
		*changed = true
	}
	if plan.ConfirmedPurchaseYear == nil || *plan.ConfirmedPurchaseYear != confirmed {
		plan.ConfirmedPurchaseYear = &confirmed
		*changed = true
	}
}

func setFloat(dst *float64, val float64, changed *bool) {
	if *dst != val {
		*dst = val
		*changed = true
	}
}

func setFloatPtr(dst **float64, val float64, changed *bool) {
	if *dst == nil || **dst != val {
		*dst = &val
		*changed = true
	}
}

func setBool(dst *bool, val bool, changed *bool) {
	if *dst != val {
		*dst = val
		*changed = true
	}
}
