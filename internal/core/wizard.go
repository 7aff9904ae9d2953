package core

import (
	"context"
	"fmt"

	"github.com/barysiuk/mcpdesk/internal/core/catalog"
	"github.com/barysiuk/mcpdesk/internal/core/service"
	"github.com/barysiuk/mcpdesk/internal/core/tier"
)

// Step is a wizard step.
type Step string

const (
	StepSelectServices    Step = "select-services"
	StepConfigureServices Step = "configure-services"
	StepValidate          Step = "validate"
	StepDeploy            Step = "deploy"
)

var steps = []Step{StepSelectServices, StepConfigureServices, StepValidate, StepDeploy}

// Steps returns the wizard steps in order.
func Steps() []Step {
	return append([]Step(nil), steps...)
}

// Index returns the zero-based position of the step, or -1 if unknown.
func (s Step) Index() int {
	for i, st := range steps {
		if st == s {
			return i
		}
	}
	return -1
}

// Title returns the step label shown to users.
func (s Step) Title() string {
	switch s {
	case StepSelectServices:
		return "Select services"
	case StepConfigureServices:
		return "Configure services"
	case StepValidate:
		return "Validate"
	case StepDeploy:
		return "Deploy"
	default:
		return string(s)
	}
}

// WizardState is the navigation state persisted alongside a configuration.
type WizardState struct {
	Step   Step       `json:"step" yaml:"step"`
	Active service.ID `json:"active,omitempty" yaml:"active,omitempty"`
}

// Wizard drives one configuration through the steps. It is not safe for
// concurrent use.
type Wizard struct {
	cfg    *Configuration
	tier   tier.Tier
	step   Step
	active service.ID
}

// NewWizard opens cfg at the first step, or at Validate when a previous
// deploy failed. The configuration is normalized against tier t.
func NewWizard(cfg *Configuration, t tier.Tier) *Wizard {
	cfg.Normalize()
	w := &Wizard{cfg: cfg, tier: t, step: StepSelectServices}
	if cfg.Status == StatusFailed {
		w.step = StepValidate
	}
	w.reconcileTier()
	return w
}

// RestoreWizard reopens cfg at a saved navigation state. A saved step wins
// over the Validate start NewWizard picks for a failed configuration, but
// steps past SelectServices need an enabled service.
func RestoreWizard(cfg *Configuration, t tier.Tier, st WizardState) *Wizard {
	w := NewWizard(cfg, t)
	if st.Step.Index() >= 0 {
		w.step = st.Step
	}
	if w.step != StepSelectServices && len(cfg.EnabledServices()) == 0 {
		w.step = StepSelectServices
	}
	if sc := cfg.Services[st.Active]; sc != nil && sc.Enabled {
		w.active = st.Active
	}
	return w
}

func (w *Wizard) Config() *Configuration { return w.cfg }
func (w *Wizard) Tier() tier.Tier         { return w.tier }
func (w *Wizard) Step() Step              { return w.step }

// ActiveService returns the service being edited, or "" if none.
func (w *Wizard) ActiveService() service.ID { return w.active }

// State returns the navigation state for persistence.
func (w *Wizard) State() WizardState {
	return WizardState{Step: w.step, Active: w.active}
}

// SetActive selects which enabled service is being edited.
func (w *Wizard) SetActive(id service.ID) error {
	sc, err := w.serviceConfig(id)
	if err != nil {
		return err
	}
	if !sc.Enabled {
		return fmt.Errorf("%w: %s", ErrServiceDisabled, id)
	}
	w.active = id
	return nil
}

// Next advances one step if the current step's exit condition holds.
// Deploy is only reached through Deploy.
func (w *Wizard) Next() error {
	switch w.step {
	case StepSelectServices:
		if len(w.cfg.EnabledServices()) == 0 {
			return ErrNoServicesEnabled
		}
		w.step = StepConfigureServices
		if w.active == "" {
			w.active = w.cfg.EnabledServices()[0]
		}
	case StepConfigureServices:
		if pending := w.cfg.UnconfiguredServices(); len(pending) > 0 {
			return &UnconfiguredError{Services: pending}
		}
		w.step = StepValidate
	case StepValidate:
		if res := Validate(w.cfg); !res.IsValid {
			return &ValidationFailedError{Result: res}
		}
		return fmt.Errorf("%w: use deploy to finish", ErrWrongStep)
	default:
		return fmt.Errorf("%w: %s is the last step", ErrWrongStep, w.step)
	}
	return nil
}

// Back moves one step back.
func (w *Wizard) Back() error {
	i := w.step.Index()
	if i <= 0 {
		return ErrFirstStep
	}
	w.step = steps[i-1]
	return nil
}

// ToggleService enables or disables a service. Enabling makes it the active
// service; disabling clears Configured. Gated services cannot be enabled on
// the none tier.
func (w *Wizard) ToggleService(id service.ID) error {
	sc, err := w.serviceConfig(id)
	if err != nil {
		return err
	}

	if !sc.Enabled && !w.tier.Allows(sc.RequiresSubscription) {
		return ErrUpgradeRequired
	}

	sc.Enabled = !sc.Enabled
	if sc.Enabled {
		w.active = id
	} else {
		sc.Configured = false
		if w.active == id {
			w.active = ""
		}
	}
	w.touch()
	return nil
}

// UpdateParams applies an editor to a service's params. A configured service
// stays configured only if the new params are still valid.
func (w *Wizard) UpdateParams(id service.ID, edit func(service.Params) (service.Params, error)) error {
	sc, err := w.serviceConfig(id)
	if err != nil {
		return err
	}
	if !sc.Enabled {
		return fmt.Errorf("%w: %s", ErrServiceDisabled, id)
	}

	next, err := edit(sc.Params.Clone())
	if err != nil {
		return err
	}
	sc.Params = next
	if sc.Configured && !service.MustByID(id).IsValid(next) {
		sc.Configured = false
	}
	if id == service.HuggingFace {
		w.cfg.syncModels()
	}
	w.touch()
	return nil
}

// SaveService marks a service configured if its params are valid.
func (w *Wizard) SaveService(id service.ID) error {
	sc, err := w.serviceConfig(id)
	if err != nil {
		return err
	}
	if !sc.Enabled {
		return fmt.Errorf("%w: %s", ErrServiceDisabled, id)
	}
	s := service.MustByID(id)
	if !s.IsValid(sc.Params) {
		return &service.InvalidParamsError{Service: id, Problems: s.Check(sc.Params)}
	}
	sc.Configured = true
	w.touch()
	return nil
}

// ToggleModel selects or deselects a Hugging Face model within the tier limit.
func (w *Wizard) ToggleModel(modelID string) error {
	return w.UpdateParams(service.HuggingFace, func(p service.Params) (service.Params, error) {
		return service.ToggleModel(p, modelID, w.tier)
	})
}

// SetModelParam overrides one parameter for a selected model.
func (w *Wizard) SetModelParam(modelID, key string, value any) error {
	m, ok := w.cfg.Model(modelID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrModelNotSelected, modelID)
	}
	m.Params = m.Params.With(key, value)
	w.touch()
	return nil
}

// SetGlobalParam sets a parameter applied to every model.
func (w *Wizard) SetGlobalParam(key string, value any) {
	w.cfg.GlobalParams = w.cfg.GlobalParams.With(key, value)
	w.touch()
}

// TierChange reports what SetTier had to undo.
type TierChange struct {
	Disabled      []service.ID
	DroppedModels []string
}

// Empty reports whether the tier change altered the configuration.
func (c TierChange) Empty() bool {
	return len(c.Disabled) == 0 && len(c.DroppedModels) == 0
}

// SetTier applies a subscription change. On the none tier gated services are
// disabled; selections past the new model limit are dropped and the service
// loses Configured if it no longer validates.
func (w *Wizard) SetTier(t tier.Tier) TierChange {
	w.tier = t
	return w.reconcileTier()
}

func (w *Wizard) reconcileTier() TierChange {
	var change TierChange

	for _, id := range w.cfg.EnabledServices() {
		sc := w.cfg.Services[id]
		if !w.tier.Allows(sc.RequiresSubscription) {
			sc.Enabled = false
			sc.Configured = false
			if w.active == id {
				w.active = ""
			}
			change.Disabled = append(change.Disabled, id)
		}
	}

	if hf := w.cfg.Services[service.HuggingFace]; hf != nil {
		var dropped []string
		hf.Params, dropped = service.TrimModels(hf.Params, catalog.MaxSelectable(w.tier))
		if len(dropped) > 0 {
			change.DroppedModels = dropped
			if hf.Configured && !service.MustByID(service.HuggingFace).IsValid(hf.Params) {
				hf.Configured = false
			}
			w.cfg.syncModels()
		}
	}

	if !change.Empty() {
		w.touch()
		if w.step.Index() > StepSelectServices.Index() && len(w.cfg.EnabledServices()) == 0 {
			w.step = StepSelectServices
		}
	}
	return change
}

// Deploy runs the deploy pipeline from the Validate step. Success moves the
// wizard to Deploy; a failed save leaves it on Validate for a retry.
func (w *Wizard) Deploy(ctx context.Context, d *Deployer) (ExportDocument, error) {
	if w.step != StepValidate && w.step != StepDeploy {
		return ExportDocument{}, fmt.Errorf("%w: deploy from the validate step", ErrWrongStep)
	}
	doc, err := d.Deploy(ctx, w.cfg)
	if err != nil {
		return ExportDocument{}, err
	}
	w.step = StepDeploy
	return doc, nil
}

func (w *Wizard) serviceConfig(id service.ID) (*service.Config, error) {
	sc := w.cfg.Services[id]
	if sc == nil {
		return nil, fmt.Errorf("%w: %q", service.ErrUnknownService, id)
	}
	return sc, nil
}

// touch returns a deployed or failed configuration to draft once edited.
func (w *Wizard) touch() {
	if w.cfg.Status != StatusDraft {
		w.cfg.Status = StatusDraft
	}
}
