package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/barysiuk/mcpdesk/internal/store"
)

// ConfigurationStore persists configurations. store.SQLiteStore and
// store.MockStore implement it.
type ConfigurationStore interface {
	SaveConfiguration(ctx context.Context, rec *store.Record) error
	UpdateConfiguration(ctx context.Context, rec *store.Record) error
	GetConfiguration(ctx context.Context, userID, id string) (*store.Record, error)
	ListConfigurations(ctx context.Context, userID string) ([]*store.Record, error)
	DeleteConfiguration(ctx context.Context, userID, id string) error
}

// Deployer validates, exports and persists configurations.
type Deployer struct {
	store  ConfigurationStore
	logger zerolog.Logger
}

// NewDeployer creates a Deployer backed by s.
func NewDeployer(s ConfigurationStore, logger zerolog.Logger) *Deployer {
	return &Deployer{
		store:  s,
		logger: logger.With().Str("component", "deploy").Logger(),
	}
}

// Deploy validates cfg, renders the export and stores it as deployed.
//
// An invalid configuration returns *ValidationFailedError and nothing is
// stored. When storing fails, cfg.Status becomes failed, a failed record is
// saved on a best-effort basis and *PersistenceError is returned; the rest of
// cfg is left as it was. On success cfg carries the stored ID, timestamps and
// the deployed status.
func (d *Deployer) Deploy(ctx context.Context, cfg *Configuration) (ExportDocument, error) {
	if res := Validate(cfg); !res.IsValid {
		return ExportDocument{}, &ValidationFailedError{Result: res}
	}

	doc := GenerateExport(cfg)
	data, err := MarshalExport(doc)
	if err != nil {
		return ExportDocument{}, err
	}

	stored := cfg.ID != ""
	id := cfg.ID
	if !stored {
		id = uuid.NewString()
	}

	rec, err := newRecord(cfg, id, StatusDeployed, string(data))
	if err != nil {
		return ExportDocument{}, err
	}
	if err := d.put(ctx, rec, stored); err != nil {
		d.logger.Error().Err(err).Str("id", id).Msg("deploy failed")
		cfg.Status = StatusFailed
		d.saveFailed(ctx, cfg, id, string(data), stored)
		return ExportDocument{}, &PersistenceError{Op: "deploying", Err: err}
	}

	applyRecord(cfg, rec)
	d.logger.Info().Str("id", rec.ID).Int("servers", len(doc.MCPServers)).Msg("configuration deployed")
	return doc, nil
}

// saveFailed stores the failed attempt. Its own failure is only logged.
func (d *Deployer) saveFailed(ctx context.Context, cfg *Configuration, id, document string, stored bool) {
	rec, err := newRecord(cfg, id, StatusFailed, document)
	if err != nil {
		d.logger.Warn().Err(err).Msg("encoding failed configuration")
		return
	}
	if err := d.put(ctx, rec, stored); err != nil {
		d.logger.Warn().Err(err).Str("id", id).Msg("saving failed configuration")
		return
	}
	cfg.ID = rec.ID
	cfg.CreatedAt = rec.CreatedAt
	cfg.UpdatedAt = rec.UpdatedAt
}

// SaveDraft stores cfg under its current status without validating it.
func (d *Deployer) SaveDraft(ctx context.Context, cfg *Configuration) error {
	data, err := ExportJSON(cfg)
	if err != nil {
		return err
	}
	stored := cfg.ID != ""
	id := cfg.ID
	if !stored {
		id = uuid.NewString()
	}
	status := cfg.Status
	if status == "" {
		status = StatusDraft
	}

	rec, err := newRecord(cfg, id, status, string(data))
	if err != nil {
		return err
	}
	if err := d.put(ctx, rec, stored); err != nil {
		return &PersistenceError{Op: "saving", Err: err}
	}
	applyRecord(cfg, rec)
	d.logger.Debug().Str("id", rec.ID).Msg("draft saved")
	return nil
}

// put writes rec. A configuration that already has an ID replaces its
// record; one whose record is gone, or that never had one, is inserted.
func (d *Deployer) put(ctx context.Context, rec *store.Record, stored bool) error {
	if stored {
		err := d.store.UpdateConfiguration(ctx, rec)
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		d.logger.Debug().Str("id", rec.ID).Msg("stored record missing, inserting")
	}
	return d.store.SaveConfiguration(ctx, rec)
}

// Load reads a stored configuration back into wizard form.
func (d *Deployer) Load(ctx context.Context, userID, id string) (*Configuration, error) {
	rec, err := d.store.GetConfiguration(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("loading configuration %s: %w", id, err)
	}
	return ConfigurationFromRecord(rec)
}

// List returns the user's stored configurations, newest first.
func (d *Deployer) List(ctx context.Context, userID string) ([]*store.Record, error) {
	recs, err := d.store.ListConfigurations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing configurations: %w", err)
	}
	return recs, nil
}

// Delete removes a stored configuration.
func (d *Deployer) Delete(ctx context.Context, userID, id string) error {
	if err := d.store.DeleteConfiguration(ctx, userID, id); err != nil {
		return fmt.Errorf("deleting configuration %s: %w", id, err)
	}
	d.logger.Info().Str("id", id).Msg("configuration deleted")
	return nil
}

// ConfigurationFromRecord decodes a stored record. Record columns win over
// the values embedded in the draft JSON.
func ConfigurationFromRecord(rec *store.Record) (*Configuration, error) {
	var cfg Configuration
	if rec.Draft != "" {
		if err := json.Unmarshal([]byte(rec.Draft), &cfg); err != nil {
			return nil, fmt.Errorf("decoding configuration %s: %w", rec.ID, err)
		}
	}
	cfg.ID = rec.ID
	cfg.UserID = rec.UserID
	cfg.Name = rec.Name
	cfg.Status = Status(rec.Status)
	cfg.CreatedAt = rec.CreatedAt
	cfg.UpdatedAt = rec.UpdatedAt
	cfg.Normalize()
	return &cfg, nil
}

func newRecord(cfg *Configuration, id string, status Status, document string) (*store.Record, error) {
	snapshot := cfg.Redacted()
	snapshot.ID = id
	snapshot.Status = status
	draft, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	return &store.Record{
		ID:        id,
		UserID:    cfg.UserID,
		Name:      cfg.Name,
		Status:    string(status),
		Document:  document,
		Draft:     string(draft),
		CreatedAt: cfg.CreatedAt,
	}, nil
}

func applyRecord(cfg *Configuration, rec *store.Record) {
	cfg.ID = rec.ID
	cfg.Status = Status(rec.Status)
	cfg.CreatedAt = rec.CreatedAt
	cfg.UpdatedAt = rec.UpdatedAt
}
