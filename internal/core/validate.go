package core

import (
	"strings"

	"github.com/barysiuk/mcpdesk/internal/core/service"
)

// Result is the outcome of Validate. Errors are user-facing sentences.
type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Validate checks a configuration before export. It never fails: every
// problem is reported in the result.
//
// With no enabled service it reports that alone. Otherwise it reports every
// enabled but unconfigured service in one message, then runs each enabled
// service's own checks, even for services already marked configured.
func Validate(cfg *Configuration) Result {
	if cfg == nil {
		return Result{Errors: []string{"At least one service must be enabled."}}
	}

	enabled := cfg.EnabledServices()
	if len(enabled) == 0 {
		return Result{Errors: []string{"At least one service must be enabled."}}
	}

	errs := []string{}
	if pending := cfg.UnconfiguredServices(); len(pending) > 0 {
		names := make([]string, len(pending))
		for i, id := range pending {
			names[i] = string(id)
		}
		errs = append(errs, "Enabled services are not configured: "+strings.Join(names, ", ")+".")
	}

	for _, id := range enabled {
		s, ok := service.ByID(id)
		if !ok {
			continue
		}
		errs = append(errs, s.Check(cfg.Services[id].Params)...)
	}

	return Result{IsValid: len(errs) == 0, Errors: errs}
}
