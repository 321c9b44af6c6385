package progress

import (
	"context"
	"errors"

	"homeward-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProgressNotFound = errors.New("Plan not found")

// Service reads and resets onboarding progress. Section state changes during
// an update go through the plans coordinator, not here.
type Service struct {
	DB *gorm.DB
}

// View is the progress read model: raw states plus the derived flags the
// client renders the stepper from.
type View struct {
	Progress *domain.SectionProgress `json:"progress"`
	Active   map[Section]bool        `json:"active"`
	Percent  int                     `json:"percent"`
}

func (s *Service) load(ctx context.Context, userID uuid.UUID) (*domain.SectionProgress, error) {
	var plan domain.Plan
	if err := s.DB.WithContext(ctx).Select("plan_id").Where("user_id = ?", userID).First(&plan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	var prog domain.SectionProgress
	if err := s.DB.WithContext(ctx).Where("plan_id = ?", plan.PlanID).First(&prog).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	return &prog, nil
}

// ViewProgress returns the user's progress with derived activation flags.
func (s *Service) ViewProgress(ctx context.Context, userID uuid.UUID) (*View, error) {
	prog, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &View{Progress: prog, Active: Active(prog), Percent: Percent(prog)}, nil
}

// ResetProgress is the explicit administrative reset: all four sections back
// to not started. Plan data and the projection cache are left alone.
func (s *Service) ResetProgress(ctx context.Context, userID uuid.UUID) (*View, error) {
	prog, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	Reset(prog)
	if err := s.DB.WithContext(ctx).Save(prog).Error; err != nil {
		return nil, err
	}
	return &View{Progress: prog, Active: Active(prog), Percent: Percent(prog)}, nil
}
