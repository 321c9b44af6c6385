package plans

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrPlanNotFound covers both "no such plan" and "not the caller's plan";
	// the two are deliberately indistinguishable to the caller.
	ErrPlanNotFound = errors.New("Plan not found")

	ErrMalformedSection = errors.New("Malformed section data")
)

// ValidationError carries field-level detail for a 400 response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid fields: %s", strings.Join(names, ", "))
}

type fieldCheck struct {
	fields map[string]string
}

func newFieldCheck() *fieldCheck {
	return &fieldCheck{fields: map[string]string{}}
}

func (v *fieldCheck) add(field, reason string) {
	v.fields[field] = reason
}

func (v *fieldCheck) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}
