package domain

import (
	"time"

	"github.com/google/uuid"
)

// SectionStatus is the per-section onboarding state.
type SectionStatus string

const (
	SectionNotStarted SectionStatus = "not_started"
	SectionInProgress SectionStatus = "in_progress"
	SectionCompleted  SectionStatus = "completed"
)

// SectionProgress tracks the four ordered intake-flow sections for a plan,
// keyed 1:1 to the Plan. States only move forward; the progress tracker
// enforces the ordering and the reset.
type SectionProgress struct {
	PlanID              uuid.UUID     `gorm:"column:plan_id;type:uuid;primaryKey" json:"plan_id"`
	IntakeStatus        SectionStatus `gorm:"column:intake_status;type:varchar(20);not null;default:'not_started'" json:"intake_status"`
	FamilySupportStatus SectionStatus `gorm:"column:family_support_status;type:varchar(20);not null;default:'not_started'" json:"family_support_status"`
	SpendingStatus      SectionStatus `gorm:"column:spending_status;type:varchar(20);not null;default:'not_started'" json:"spending_status"`
	AssumptionsStatus   SectionStatus `gorm:"column:assumptions_status;type:varchar(20);not null;default:'not_started'" json:"assumptions_status"`
	CreatedAt           time.Time     `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt           time.Time     `gorm:"column:updatedAt" json:"updatedAt"`
}

func (SectionProgress) TableName() string {
	return "SectionProgresses"
}
