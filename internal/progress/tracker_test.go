package progress

import (
	"testing"

	"homeward-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSection(t *testing.T) {
	sec, err := ParseSection("family-support")
	require.NoError(t, err)
	assert.Equal(t, SectionFamilySupport, sec)

	sec, err = ParseSection("SPENDING")
	require.NoError(t, err)
	assert.Equal(t, SectionSpending, sec)

	_, err = ParseSection("extras")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestCanAct_Gating(t *testing.T) {
	p := &domain.SectionProgress{
		IntakeStatus:        domain.SectionNotStarted,
		FamilySupportStatus: domain.SectionNotStarted,
		SpendingStatus:      domain.SectionNotStarted,
		AssumptionsStatus:   domain.SectionNotStarted,
	}

	assert.True(t, CanAct(p, SectionIntake), "first section is always open")
	assert.False(t, CanAct(p, SectionFamilySupport))
	assert.False(t, CanAct(p, SectionSpending))

	p.IntakeStatus = domain.SectionCompleted
	assert.True(t, CanAct(p, SectionFamilySupport))
	assert.False(t, CanAct(p, SectionSpending), "only the immediate successor unlocks")
}

func TestAdvance_LockedSection(t *testing.T) {
	p := &domain.SectionProgress{}
	err := Advance(p, SectionSpending, domain.SectionCompleted)
	assert.ErrorIs(t, err, ErrSectionLocked)
}

func TestAdvance_Monotonic(t *testing.T) {
	p := &domain.SectionProgress{}
	require.NoError(t, Advance(p, SectionIntake, domain.SectionCompleted))

	// Re-completing is fine; regressing is not.
	require.NoError(t, Advance(p, SectionIntake, domain.SectionCompleted))
	err := Advance(p, SectionIntake, domain.SectionInProgress)
	assert.ErrorIs(t, err, ErrBackwardsStatus)
	assert.Equal(t, domain.SectionCompleted, p.IntakeStatus)
}

func TestReset(t *testing.T) {
	p := &domain.SectionProgress{
		IntakeStatus:        domain.SectionCompleted,
		FamilySupportStatus: domain.SectionCompleted,
		SpendingStatus:      domain.SectionInProgress,
	}
	Reset(p)
	for _, sec := range Order {
		assert.Equal(t, domain.SectionNotStarted, StatusOf(p, sec), string(sec))
	}
}

func TestPercent(t *testing.T) {
	p := &domain.SectionProgress{}
	assert.Equal(t, 0, Percent(p))

	p.IntakeStatus = domain.SectionCompleted
	p.FamilySupportStatus = domain.SectionCompleted
	assert.Equal(t, 50, Percent(p))

	p.SpendingStatus = domain.SectionCompleted
	p.AssumptionsStatus = domain.SectionCompleted
	assert.Equal(t, 100, Percent(p))
}

func TestActive(t *testing.T) {
	p := &domain.SectionProgress{IntakeStatus: domain.SectionCompleted}
	active := Active(p)
	assert.True(t, active[SectionIntake])
	assert.True(t, active[SectionFamilySupport])
	assert.False(t, active[SectionSpending])
	assert.False(t, active[SectionAssumptions])
}
