package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProjectionCache persists the latest full projection run for a plan, one row
// per simulated year, keyed 1:1 to the Plan it was computed from. It is only
// ever written by the section update coordinator, in the same transaction as
// the plan fields that produced it.
type ProjectionCache struct {
	PlanID             uuid.UUID      `gorm:"column:plan_id;type:uuid;primaryKey" json:"plan_id"`
	Rows               datatypes.JSON `gorm:"column:rows;type:json" json:"rows"`
	EarliestViableYear *int           `gorm:"column:earliest_viable_year" json:"earliest_viable_year"`
	Code               string         `gorm:"column:code;type:varchar(40);not null" json:"code"`
	Message            string         `gorm:"column:message;not null" json:"message"`
	ComputedAt         time.Time      `gorm:"column:computed_at;not null" json:"computed_at"`
	CreatedAt          time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt          time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
}

func (ProjectionCache) TableName() string {
	return "ProjectionCaches"
}
