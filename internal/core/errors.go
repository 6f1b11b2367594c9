package core

import (
	"errors"
	"fmt"

	"github.com/jpmellow/longevity-snap-02/internal/assessment"
)

var (
	// ErrNotFound covers both missing records and records owned by another
	// user, so handlers never leak whether a foreign ID exists.
	ErrNotFound = errors.New("not found")

	// ErrCoachDisabled is returned when no LLM provider is configured.
	ErrCoachDisabled = errors.New("health coach is not configured")

	// ErrUnknownMetric is returned for history requests of a metric type the
	// service never records.
	ErrUnknownMetric = errors.New("unknown metric type")
)

// ValidationError carries the field errors of every incomplete form step.
type ValidationError struct {
	Steps []assessment.StepErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("assessment incomplete: %d step(s) with errors", len(e.Steps))
}
