// Package progress is the state machine over the four ordered intake-flow
// sections. Section k+1 only unlocks once section k is completed; states move
// forward only, except for the explicit administrative reset.
package progress

import (
	"errors"
	"strings"

	"homeward-backend/internal/domain"
)

// Section identifies one step of the intake flow, in submission order.
type Section string

const (
	SectionIntake        Section = "intake"
	SectionFamilySupport Section = "family_support"
	SectionSpending      Section = "spending"
	SectionAssumptions   Section = "assumptions"
)

// Order is the canonical section ordering.
var Order = []Section{SectionIntake, SectionFamilySupport, SectionSpending, SectionAssumptions}

var (
	ErrUnknownSection  = errors.New("unknown section")
	ErrSectionLocked   = errors.New("previous section must be completed first")
	ErrBackwardsStatus = errors.New("section status cannot move backwards")
)

// ParseSection accepts both underscore and hyphen spellings from clients.
func ParseSection(s string) (Section, error) {
	switch Section(strings.ReplaceAll(strings.ToLower(s), "-", "_")) {
	case SectionIntake:
		return SectionIntake, nil
	case SectionFamilySupport:
		return SectionFamilySupport, nil
	case SectionSpending:
		return SectionSpending, nil
	case SectionAssumptions:
		return SectionAssumptions, nil
	}
	return "", ErrUnknownSection
}

// StatusOf reads one section's state off the progress record.
func StatusOf(p *domain.SectionProgress, sec Section) domain.SectionStatus {
	switch sec {
	case SectionIntake:
		return p.IntakeStatus
	case SectionFamilySupport:
		return p.FamilySupportStatus
	case SectionSpending:
		return p.SpendingStatus
	case SectionAssumptions:
		return p.AssumptionsStatus
	}
	return domain.SectionNotStarted
}

func setStatus(p *domain.SectionProgress, sec Section, st domain.SectionStatus) {
	switch sec {
	case SectionIntake:
		p.IntakeStatus = st
	case SectionFamilySupport:
		p.FamilySupportStatus = st
	case SectionSpending:
		p.SpendingStatus = st
	case SectionAssumptions:
		p.AssumptionsStatus = st
	}
}

func rank(st domain.SectionStatus) int {
	switch st {
	case domain.SectionInProgress:
		return 1
	case domain.SectionCompleted:
		return 2
	}
	return 0
}

// CanAct reports whether the section may be submitted: the first section is
// always open, every other one needs its immediate predecessor completed.
func CanAct(p *domain.SectionProgress, sec Section) bool {
	for i, s := range Order {
		if s != sec {
			continue
		}
		if i == 0 {
			return true
		}
		return StatusOf(p, Order[i-1]) == domain.SectionCompleted
	}
	return false
}

// Advance moves a section to the given state. Re-submitting a completed
// section stays completed; moving backwards is rejected.
func Advance(p *domain.SectionProgress, sec Section, st domain.SectionStatus) error {
	if !CanAct(p, sec) {
		return ErrSectionLocked
	}
	if rank(st) < rank(StatusOf(p, sec)) {
		return ErrBackwardsStatus
	}
	setStatus(p, sec, st)
	return nil
}

// Reset is the explicit administrative escape hatch: every section back to
// not started.
func Reset(p *domain.SectionProgress) {
	for _, sec := range Order {
		setStatus(p, sec, domain.SectionNotStarted)
	}
}

// Active returns, per section, whether the client may currently act on it.
func Active(p *domain.SectionProgress) map[Section]bool {
	out := make(map[Section]bool, len(Order))
	for _, sec := range Order {
		out[sec] = CanAct(p, sec)
	}
	return out
}

// Percent is the completed share of all sections, 0..100.
func Percent(p *domain.SectionProgress) int {
	done := 0
	for _, sec := range Order {
		if StatusOf(p, sec) == domain.SectionCompleted {
			done++
		}
	}
	return done * 100 / len(Order)
}
