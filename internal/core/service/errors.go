package service

import (
	"errors"
	"fmt"

	"github.com/barysiuk/mcpdesk/internal/core/tier"
)

var (
	// ErrDuplicateDirectory is returned when adding a directory already in the list.
	ErrDuplicateDirectory = errors.New("directory already added")

	// ErrEmptyDirectory is returned when adding a blank directory.
	ErrEmptyDirectory = errors.New("directory is empty")

	// ErrUnknownModel is returned when selecting a model missing from the catalog.
	ErrUnknownModel = errors.New("unknown model")

	// ErrTierLimitExceeded matches any *TierLimitError.
	ErrTierLimitExceeded = errors.New("tier limit exceeded")
)

// TierLimitError reports that the user's tier does not allow another model.
// Callers surface it as an upgrade prompt rather than a failure.
type TierLimitError struct {
	Tier  tier.Tier
	Limit int
}

func (e *TierLimitError) Error() string {
	if e.Limit == 0 {
		return fmt.Sprintf("the %s tier cannot select models; upgrade to select models", e.Tier)
	}
	return fmt.Sprintf("the %s tier allows at most %d models; upgrade to select more", e.Tier, e.Limit)
}

func (e *TierLimitError) Is(target error) bool { return target == ErrTierLimitExceeded }

// InvalidParamsError is returned by a save attempt whose params fail the
// service's validity predicate.
type InvalidParamsError struct {
	Service  ID
	Problems []string
}

func (e *InvalidParamsError) Error() string {
	if len(e.Problems) == 0 {
		return fmt.Sprintf("%s: parameters are incomplete", e.Service)
	}
	msg := fmt.Sprintf("%s: %s", e.Service, e.Problems[0])
	for _, p := range e.Problems[1:] {
		msg += "; " + p
	}
	return msg
}
