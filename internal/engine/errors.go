package engine

import (
	"errors"
	"strings"
)

var (
	// ErrValidation is returned when input is rejected before any remote call.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an operation targets a task that is not
	// in the loaded collection. No remote call is made.
	ErrNotFound = errors.New("task not found")

	// ErrMutationInFlight is returned when a mutation is submitted while
	// another one is still running.
	ErrMutationInFlight = errors.New("another change is in progress")

	// ErrRefresh is reported through the Notifier when the reload after a
	// successful mutation fails. The shown collection may be stale.
	ErrRefresh = errors.New("change saved but reload failed")
)

// LoadError reports which half of a load failed. Each failure is independent.
type LoadError struct {
	Tasks      error
	Categories error
}

func (e *LoadError) Error() string {
	var parts []string
	if e.Tasks != nil {
		parts = append(parts, "load tasks: "+e.Tasks.Error())
	}
	if e.Categories != nil {
		parts = append(parts, "load categories: "+e.Categories.Error())
	}
	return strings.Join(parts, "; ")
}

func (e *LoadError) Unwrap() []error {
	var errs []error
	if e.Tasks != nil {
		errs = append(errs, e.Tasks)
	}
	if e.Categories != nil {
		errs = append(errs, e.Categories)
	}
	return errs
}
