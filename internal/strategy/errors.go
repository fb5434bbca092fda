package strategy

import (
	"errors"
	"fmt"
)

// ErrNotApplied is returned when the target table is read before a
// successful Apply.
var ErrNotApplied = errors.New("strategy not applied")

// ErrNoModel is returned when a strategy is built without a model or a
// model factory.
var ErrNoModel = errors.New("strategy has no grader model")

// ErrNoLabels is returned by Apply when no final grades were supplied.
var ErrNoLabels = errors.New("strategy has no final grades to compare against")

// ConfigurationError indicates a strategy configuration entry that cannot
// be applied to the feature table.
type ConfigurationError struct {
	Feature string
	Reason  string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := "invalid strategy configuration"
	if e.Feature != "" {
		msg += fmt.Sprintf(" for %q", e.Feature)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ModelOutputError indicates the grader returned the wrong number of
// predictions.
type ModelOutputError struct {
	Want int
	Got  int
}

func (e *ModelOutputError) Error() string {
	return fmt.Sprintf("grader returned %d predictions for %d students", e.Got, e.Want)
}
