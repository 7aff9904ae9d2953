package core

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Draft is the wizard session kept between CLI invocations.
type Draft struct {
	Configuration *Configuration `yaml:"configuration"`
	State         WizardState    `yaml:"state"`
}

// DraftStore keeps the current draft in a YAML file.
type DraftStore struct {
	path string
}

// NewDraftStore creates a DraftStore at path.
func NewDraftStore(path string) *DraftStore {
	return &DraftStore{path: path}
}

// Path returns the draft file path.
func (d *DraftStore) Path() string { return d.path }

// Load reads the draft. Returns ErrNoDraft if there is none.
func (d *DraftStore) Load() (*Draft, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoDraft
		}
		return nil, fmt.Errorf("reading draft: %w", err)
	}

	var draft Draft
	if err := yaml.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("parsing draft: %w", err)
	}
	if draft.Configuration == nil {
		return nil, ErrNoDraft
	}
	draft.Configuration.Normalize()
	return &draft, nil
}

// Save writes the draft atomically. The Hugging Face token is not written;
// it lives in the token env file.
func (d *DraftStore) Save(draft *Draft) error {
	out := Draft{Configuration: draft.Configuration.Redacted(), State: draft.State}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshaling draft: %w", err)
	}
	return writeFileAtomic(d.path, data, 0o600)
}

// Clear removes the draft. A missing draft is not an error.
func (d *DraftStore) Clear() error {
	if err := os.Remove(d.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing draft: %w", err)
	}
	return nil
}

// ResumeDraft reopens the draft at the user's current tier with token
// restored. If the tier cannot be read the draft is not reopened, so nothing
// is reconciled against a tier the user does not have.
func ResumeDraft(ctx context.Context, drafts *DraftStore, id Identity, token string) (*Wizard, error) {
	draft, err := drafts.Load()
	if err != nil {
		return nil, err
	}
	t, err := id.SubscriptionTier(ctx)
	if err != nil {
		return nil, err
	}
	draft.Configuration.RestoreToken(token)
	return RestoreWizard(draft.Configuration, t, draft.State), nil
}
