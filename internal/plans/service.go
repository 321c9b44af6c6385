package plans

import (
	"context"
	"fmt"
	"sync"
	"time"

	"homeward-backend/internal/domain"
	"homeward-backend/internal/progress"
	"homeward-backend/internal/projection"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Loan shape defaults applied at plan creation; the assumptions section
// overwrites them when submitted.
const (
	defaultLoanTermYears = 20
	defaultLoanMethod    = domain.LoanMethodFixed
)

// Classification codes stored with the cache and echoed to the client.
const (
	CodeViableNow = "VIABLE_NOW"
	CodeViableIn  = "VIABLE_IN_FUTURE"
	CodeNotViable = "NOT_VIABLE_WITHIN_HORIZON"
)

// Outcome says how the latest recomputation moved the earliest viable year
// relative to the previously cached run.
type Outcome string

const (
	OutcomeImproved  Outcome = "improved"
	OutcomeWorsened  Outcome = "worsened"
	OutcomeUnchanged Outcome = "unchanged"
)

// Service is the section update coordinator. All plan mutations go through
// it; nothing else writes Plan, ProjectionCache or SectionProgress.
type Service struct {
	DB     *gorm.DB
	Engine *projection.Engine

	locks sync.Map // uuid.UUID -> *sync.Mutex, one per plan owner
}

// SectionResult is the per-update summary echoed to the client.
type SectionResult struct {
	Section            progress.Section `json:"section"`
	EarliestViableYear *int             `json:"earliest_viable_year"`
	Viable             bool             `json:"viable"`
	Code               string           `json:"code"`
	Message            string           `json:"message"`
	Outcome            Outcome          `json:"outcome"`
	Recomputed         bool             `json:"recomputed"`
}

// UpdateResponse is the full payload for a committed section update.
type UpdateResponse struct {
	Result     SectionResult           `json:"result"`
	Plan       *domain.Plan            `json:"plan"`
	Projection datatypes.JSON          `json:"projection"`
	Progress   *domain.SectionProgress `json:"progress"`
}

// PlanView bundles the plan with its derived state for read endpoints.
type PlanView struct {
	Plan       *domain.Plan            `json:"plan"`
	Projection *domain.ProjectionCache `json:"projection"`
	Progress   *domain.SectionProgress `json:"progress"`
}

// lock serializes merge-recompute-commit per plan owner. The database
// transaction gives atomicity; this gives ordering, so a projection computed
// from an older plan can never overwrite one computed from a newer plan.
func (s *Service) lock(userID uuid.UUID) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// recompute is the single entry point that refreshes all derived state from
// the current plan: cache rows, classification, and the plan's first viable
// year. No code path writes projection-relevant plan fields without either
// calling this or abandoning the transaction.
func (s *Service) recompute(plan *domain.Plan, cache *domain.ProjectionCache) error {
	res, err := s.Engine.Run(plan)
	if err != nil {
		return err
	}
	rows, err := json.Marshal(res.Rows)
	if err != nil {
		return err
	}
	code, message := classifyResult(res)

	plan.FirstViableYear = res.EarliestViableYear
	cache.PlanID = plan.PlanID
	cache.Rows = datatypes.JSON(rows)
	cache.EarliestViableYear = res.EarliestViableYear
	cache.Code = code
	cache.Message = message
	cache.ComputedAt = time.Now()
	return nil
}

// FindOrCreate creates the user's plan from the intake payload, or returns
// the existing one. The existence check and insert are a single conditional
// insert against the unique user_id index, so two racing creation requests
// yield exactly one plan and the loser observes the winner's.
func (s *Service) FindOrCreate(ctx context.Context, userID uuid.UUID, in *IntakeInput) (*domain.Plan, bool, error) {
	v := newFieldCheck()
	if in.TargetHousePrice == nil {
		v.add("target_house_price", "required")
	}
	if in.PrimaryMonthlyIncome == nil {
		v.add("primary_monthly_income", "required")
	}
	if in.HorizonYears == nil && in.ConfirmedPurchaseYear == nil {
		v.add("horizon_years", "either horizon_years or confirmed_purchase_year is required")
	}
	if err := v.err(); err != nil {
		return nil, false, err
	}

	plan := domain.Plan{
		UserID:        userID,
		CreatedYear:   time.Now().Year(),
		LoanTermYears: defaultLoanTermYears,
		LoanMethod:    defaultLoanMethod,
	}
	if _, err := applyIntake(&plan, in); err != nil {
		return nil, false, err
	}

	var cache domain.ProjectionCache
	if err := s.recompute(&plan, &cache); err != nil {
		return nil, false, err
	}

	created := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&plan)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race (or plan already existed): observe the winner.
			return tx.Where("user_id = ?", userID).First(&plan).Error
		}
		created = true

		cache.PlanID = plan.PlanID
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cache).Error; err != nil {
			return err
		}
		prog := domain.SectionProgress{
			PlanID:              plan.PlanID,
			IntakeStatus:        domain.SectionCompleted,
			FamilySupportStatus: domain.SectionNotStarted,
			SpendingStatus:      domain.SectionNotStarted,
			AssumptionsStatus:   domain.SectionNotStarted,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&prog).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &plan, created, nil
}

// UpdateSection merges a section's partial input into the stored plan,
// recomputes the projection when anything actually changed, and commits plan
// fields, cache and section state as one unit. Submitting data identical to
// what is stored still completes the section, without touching the cache.
func (s *Service) UpdateSection(ctx context.Context, userID uuid.UUID, sectionName string, data json.RawMessage) (*UpdateResponse, error) {
	sec, err := progress.ParseSection(sectionName)
	if err != nil {
		return nil, err
	}

	unlock := s.lock(userID)
	defer unlock()

	var resp *UpdateResponse
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan domain.Plan
		if err := tx.Where("user_id = ?", userID).First(&plan).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPlanNotFound
			}
			return err
		}
		var prog domain.SectionProgress
		if err := tx.Where("plan_id = ?", plan.PlanID).First(&prog).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPlanNotFound
			}
			return err
		}
		if !progress.CanAct(&prog, sec) {
			return progress.ErrSectionLocked
		}

		changed, err := applySection(&plan, sec, data)
		if err != nil {
			return err
		}

		var cache domain.ProjectionCache
		if err := tx.Where("plan_id = ?", plan.PlanID).First(&cache).Error; err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		var prevViable *int
		if cache.EarliestViableYear != nil {
			y := *cache.EarliestViableYear
			prevViable = &y
		}

		if changed {
			if err := s.recompute(&plan, &cache); err != nil {
				return err
			}
			if err := tx.Save(&plan).Error; err != nil {
				return err
			}
			if err := tx.Save(&cache).Error; err != nil {
				return err
			}
		}

		if err := progress.Advance(&prog, sec, domain.SectionCompleted); err != nil {
			return err
		}
		if err := tx.Save(&prog).Error; err != nil {
			return err
		}

		resp = &UpdateResponse{
			Result: SectionResult{
				Section:            sec,
				EarliestViableYear: cache.EarliestViableYear,
				Viable:             cache.EarliestViableYear != nil,
				Code:               cache.Code,
				Message:            cache.Message,
				Outcome:            compareOutcome(prevViable, cache.EarliestViableYear),
				Recomputed:         changed,
			},
			Plan:       &plan,
			Projection: cache.Rows,
			Progress:   &prog,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ViewPlan returns the plan with its cached projection and progress, scoped
// to the owning user.
func (s *Service) ViewPlan(ctx context.Context, userID uuid.UUID) (*PlanView, error) {
	var plan domain.Plan
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&plan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	view := &PlanView{Plan: &plan}

	var cache domain.ProjectionCache
	if err := s.DB.WithContext(ctx).Where("plan_id = ?", plan.PlanID).First(&cache).Error; err == nil {
		view.Projection = &cache
	}
	var prog domain.SectionProgress
	if err := s.DB.WithContext(ctx).Where("plan_id = ?", plan.PlanID).First(&prog).Error; err == nil {
		view.Progress = &prog
	}
	return view, nil
}

// ViewProjection returns only the cached projection for the user's plan.
func (s *Service) ViewProjection(ctx context.Context, userID uuid.UUID) (*domain.ProjectionCache, error) {
	view, err := s.ViewPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	if view.Projection == nil {
		return nil, ErrPlanNotFound
	}
	return view.Projection, nil
}

func applySection(plan *domain.Plan, sec progress.Section, data json.RawMessage) (bool, error) {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	switch sec {
	case progress.SectionIntake:
		var in IntakeInput
		if err := json.Unmarshal(data, &in); err != nil {
			return false, ErrMalformedSection
		}
		return applyIntake(plan, &in)
	case progress.SectionFamilySupport:
		var in FamilySupportInput
		if err := json.Unmarshal(data, &in); err != nil {
			return false, ErrMalformedSection
		}
		return applyFamilySupport(plan, &in)
	case progress.SectionSpending:
		var in SpendingInput
		if err := json.Unmarshal(data, &in); err != nil {
			return false, ErrMalformedSection
		}
		return applySpending(plan, &in)
	case progress.SectionAssumptions:
		var in AssumptionsInput
		if err := json.Unmarshal(data, &in); err != nil {
			return false, ErrMalformedSection
		}
		return applyAssumptions(plan, &in)
	}
	return false, progress.ErrUnknownSection
}

func classifyResult(res *projection.Result) (code, message string) {
	switch {
	case res.EarliestViableIndex == nil:
		return CodeNotViable, "No affordable purchase year within your horizon."
	case *res.EarliestViableIndex == 0:
		return CodeViableNow, "You can afford to buy now."
	default:
		return CodeViableIn, fmt.Sprintf("You could afford to buy in %d.", *res.EarliestViableYear)
	}
}

func compareOutcome(prev, next *int) Outcome {
	switch {
	case prev == nil && next == nil:
		return OutcomeUnchanged
	case prev == nil:
		return OutcomeImproved
	case next == nil:
		return OutcomeWorsened
	case *next < *prev:
		return OutcomeImproved
	case *next > *prev:
		return OutcomeWorsened
	}
	return OutcomeUnchanged
}
