package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/barysiuk/mcpdesk/internal/core/service"
)

var (
	// ErrNoServicesEnabled blocks leaving the service selection step.
	ErrNoServicesEnabled = errors.New("at least one service must be enabled")

	// ErrUpgradeRequired is returned when the tier does not allow a gated service.
	ErrUpgradeRequired = errors.New("a subscription is required for this service")

	// ErrFirstStep is returned by Back on the first step.
	ErrFirstStep = errors.New("already at the first step")

	// ErrWrongStep is returned when an action is not available on the current step.
	ErrWrongStep = errors.New("action not available on this step")

	// ErrServiceDisabled is returned when editing a service that is not enabled.
	ErrServiceDisabled = errors.New("service is not enabled")

	// ErrModelNotSelected is returned when setting params for an unselected model.
	ErrModelNotSelected = errors.New("model is not selected")

	// ErrNoDraft is returned when no wizard draft exists on disk.
	ErrNoDraft = errors.New("no configuration in progress")
)

// UnconfiguredError lists enabled services that still need configuring.
type UnconfiguredError struct {
	Services []service.ID
}

func (e *UnconfiguredError) Error() string {
	names := make([]string, len(e.Services))
	for i, id := range e.Services {
		names[i] = string(id)
	}
	return "enabled services are not configured: " + strings.Join(names, ", ")
}

// ValidationFailedError carries the validator's result.
type ValidationFailedError struct {
	Result Result
}

func (e *ValidationFailedError) Error() string {
	if len(e.Result.Errors) == 1 {
		return "validation failed: " + e.Result.Errors[0]
	}
	return fmt.Sprintf("validation failed with %d errors: %s",
		len(e.Result.Errors), strings.Join(e.Result.Errors, " "))
}

// PersistenceError wraps a storage failure during deploy or save. The
// in-memory configuration is kept so the operation can be retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s configuration: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
