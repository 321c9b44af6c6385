package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoanMethod selects how the mortgage is amortized.
type LoanMethod string

const (
	LoanMethodFixed            LoanMethod = "fixed"
	LoanMethodDecliningBalance LoanMethod = "declining_balance"
)

// FamilySupportType says when a family gift lands.
type FamilySupportType string

const (
	// FamilySupportUpfront is received now and compounds with savings.
	FamilySupportUpfront FamilySupportType = "upfront"
	// FamilySupportAtPurchase is only available toward the down payment in the purchase year.
	FamilySupportAtPurchase FamilySupportType = "at_purchase"
)

// Plan is the per-user financial snapshot driving the affordability projection.
// Monetary amounts are in millions of the household currency; rates are percent
// per year (9 means 9%). One plan per user (unique index on user_id) — plan
// creation is an atomic find-or-create against that index.
//
// Pointer fields are nullable-by-design: nil means "never entered", which is
// distinct from an explicit zero. Non-pointer numeric fields are required at
// intake and always present thereafter.
type Plan struct {
	PlanID uuid.UUID `gorm:"column:plan_id;type:uuid;primaryKey" json:"plan_id"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`

	// Intake section.
	CreatedYear           int     `gorm:"column:created_year;not null" json:"created_year"`
	HorizonYears          int     `gorm:"column:horizon_years;not null" json:"horizon_years"`
	ConfirmedPurchaseYear *int    `gorm:"column:confirmed_purchase_year" json:"confirmed_purchase_year"`
	TargetHousePrice      float64 `gorm:"column:target_house_price;type:decimal(18,2);not null" json:"target_house_price"`
	InitialSavings        float64 `gorm:"column:initial_savings;type:decimal(18,2);not null;default:0" json:"initial_savings"`
	PrimaryMonthlyIncome  float64 `gorm:"column:primary_monthly_income;type:decimal(18,2);not null" json:"primary_monthly_income"`
	HasCoApplicant        bool    `gorm:"column:has_co_applicant;not null;default:false" json:"has_co_applicant"`
	CoApplicantIncome     *float64 `gorm:"column:co_applicant_income;type:decimal(18,2)" json:"co_applicant_income"`
	OtherMonthlyIncome    *float64 `gorm:"column:other_monthly_income;type:decimal(18,2)" json:"other_monthly_income"`

	// Family support section.
	HasFamilySupport    bool               `gorm:"column:has_family_support;not null;default:false" json:"has_family_support"`
	FamilySupportAmount *float64           `gorm:"column:family_support_amount;type:decimal(18,2)" json:"family_support_amount"`
	FamilySupportType   *FamilySupportType `gorm:"column:family_support_type;type:varchar(20)" json:"family_support_type"`

	// Spending section.
	MonthlyLivingExpenses  float64  `gorm:"column:monthly_living_expenses;type:decimal(18,2);not null;default:0" json:"monthly_living_expenses"`
	MonthlyNonHousingDebt  *float64 `gorm:"column:monthly_non_housing_debt;type:decimal(18,2)" json:"monthly_non_housing_debt"`
	AnnualInsurancePremium *float64 `gorm:"column:annual_insurance_premium;type:decimal(18,2)" json:"annual_insurance_premium"`

	// Assumptions section.
	SalaryGrowthRate     float64    `gorm:"column:salary_growth_rate;type:decimal(8,4);not null;default:0" json:"salary_growth_rate"`
	ExpenseGrowthRate    float64    `gorm:"column:expense_growth_rate;type:decimal(8,4);not null;default:0" json:"expense_growth_rate"`
	InvestmentReturnRate float64    `gorm:"column:investment_return_rate;type:decimal(8,4);not null;default:0" json:"investment_return_rate"`
	HouseGrowthRate      float64    `gorm:"column:house_growth_rate;type:decimal(8,4);not null;default:0" json:"house_growth_rate"`
	LoanRate             float64    `gorm:"column:loan_rate;type:decimal(8,4);not null;default:0" json:"loan_rate"`
	LoanTermYears        int        `gorm:"column:loan_term_years;not null" json:"loan_term_years"`
	LoanMethod           LoanMethod `gorm:"column:loan_method;type:varchar(20);not null;default:'fixed'" json:"loan_method"`

	// Derived; written only alongside a ProjectionCache refresh.
	FirstViableYear *int `gorm:"column:first_viable_year" json:"first_viable_year"`

	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Plan) TableName() string {
	return "Plans"
}

// BeforeCreate: never insert zero UUID for primary key; generate random when not set.
func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.PlanID == uuid.Nil {
		p.PlanID = uuid.New()
	}
	return nil
}
