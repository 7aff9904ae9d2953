package core

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barysiuk/mcpdesk/internal/core/service"
	"github.com/barysiuk/mcpdesk/internal/core/tier"
	"github.com/barysiuk/mcpdesk/internal/store"
)

func deployable() *Configuration {
	cfg := NewConfiguration("u1", "laptop")
	enable(cfg, service.WebSearch, true, nil)
	enable(cfg, service.HuggingFace, true, service.Params{
		service.ParamToken:          "hf_secretvalue",
		service.ParamSelectedModels: []string{"sdxl-turbo"},
	})
	cfg.Normalize()
	return cfg
}

func TestDeploy_ScenarioD_NothingEnabled(t *testing.T) {
	ms := store.NewMockStore()
	d := NewDeployer(ms, zerolog.Nop())

	cfg := NewConfiguration("u1", "empty")
	res := Validate(cfg)
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{"At least one service must be enabled."}, res.Errors)

	_, err := d.Deploy(context.Background(), cfg)
	var vfe *ValidationFailedError
	require.ErrorAs(t, err, &vfe)
	assert.Equal(t, res, vfe.Result)
	assert.Equal(t, 0, ms.SaveCalls, "nothing may be persisted")
	assert.Equal(t, StatusDraft, cfg.Status)
	assert.Empty(t, cfg.ID)
}

func TestDeploy_Success(t *testing.T) {
	ms := store.NewMockStore()
	d := NewDeployer(ms, zerolog.Nop())
	ctx := context.Background()
	cfg := deployable()

	doc, err := d.Deploy(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"huggingFace", "webSearch"}, doc.Keys())
	assert.Equal(t, StatusDeployed, cfg.Status)
	require.NotEmpty(t, cfg.ID)
	assert.False(t, cfg.UpdatedAt.IsZero())

	rec, err := ms.GetConfiguration(ctx, "u1", cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusDeployed, rec.Status)
	assert.Equal(t, "laptop", rec.Name)

	want, err := MarshalExport(doc)
	require.NoError(t, err)
	assert.Equal(t, string(want), rec.Document)
	assert.NotContains(t, rec.Draft, "hf_secretvalue")
	assert.NotContains(t, rec.Document, "hf_secretvalue")
}

func TestDeploy_RedeployKeepsID(t *testing.T) {
	ms := store.NewMockStore()
	d := NewDeployer(ms, zerolog.Nop())
	ctx := context.Background()
	cfg := deployable()

	_, err := d.Deploy(ctx, cfg)
	require.NoError(t, err)
	id := cfg.ID

	_, err = d.Deploy(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, id, cfg.ID)
	assert.Equal(t, 1, ms.SaveCalls, "first deploy inserts")
	assert.Equal(t, 1, ms.UpdateCalls, "redeploy replaces the stored record")

	recs, err := d.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestDeploy_MissingStoredRecordIsInserted(t *testing.T) {
	ms := store.NewMockStore()
	d := NewDeployer(ms, zerolog.Nop())
	ctx := context.Background()
	cfg := deployable()
	cfg.ID = "deleted-elsewhere"

	_, err := d.Deploy(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "deleted-elsewhere", cfg.ID)
	assert.Equal(t, 1, ms.UpdateCalls)
	assert.Equal(t, 1, ms.SaveCalls)

	rec, err := ms.GetConfiguration(ctx, "u1", "deleted-elsewhere")
	require.NoError(t, err)
	assert.Equal(t, store.StatusDeployed, rec.Status)
}

func TestDeploy_RedeployFailureMarksStoredRecordFailed(t *testing.T) {
	ms := store.NewMockStore()
	d := NewDeployer(ms, zerolog.Nop())
	ctx := context.Background()
	cfg := deployable()
	_, err := d.Deploy(ctx, cfg)
	require.NoError(t, err)

	fu := &failUpdateOnce{MockStore: ms}
	d = NewDeployer(fu, zerolog.Nop())
	_, err = d.Deploy(ctx, cfg)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, StatusFailed, cfg.Status)

	rec, err := ms.GetConfiguration(ctx, "u1", cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, rec.Status)
	assert.Equal(t, 1, ms.SaveCalls, "no second insert for a stored configuration")
}

// failUpdateOnce fails the first update and records the rest.
type failUpdateOnce struct {
	*store.MockStore
	failed bool
}

func (f *failUpdateOnce) UpdateConfiguration(ctx context.Context, rec *store.Record) error {
	if !f.failed {
		f.failed = true
		return errors.New("database is locked")
	}
	return f.MockStore.UpdateConfiguration(ctx, rec)
}

// failOnce fails the first save and records the rest.
type failOnce struct {
	*store.MockStore
	failed bool
}

func (f *failOnce) SaveConfiguration(ctx context.Context, rec *store.Record) error {
	if !f.failed {
		f.failed = true
		return errors.New("connection reset")
	}
	return f.MockStore.SaveConfiguration(ctx, rec)
}

func TestDeploy_PersistenceFailureSavesFailedRecord(t *testing.T) {
	fs := &failOnce{MockStore: store.NewMockStore()}
	d := NewDeployer(fs, zerolog.Nop())
	ctx := context.Background()
	cfg := deployable()
	before := cfg.Clone()

	_, err := d.Deploy(ctx, cfg)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.EqualError(t, errors.Unwrap(err), "connection reset")

	assert.Equal(t, StatusFailed, cfg.Status)
	require.NotEmpty(t, cfg.ID)
	assert.Equal(t, before.Services, cfg.Services, "draft data must be preserved")

	rec, err := fs.GetConfiguration(ctx, "u1", cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, rec.Status)

	loaded, err := d.Load(ctx, "u1", cfg.ID)
	require.NoError(t, err)
	w := NewWizard(loaded, tier.Basic)
	assert.Equal(t, StepValidate, w.Step())
}

func TestDeploy_FailedRecordSaveAlsoFails(t *testing.T) {
	ms := store.NewMockStore()
	ms.SaveErr = errors.New("disk full")
	d := NewDeployer(ms, zerolog.Nop())
	cfg := deployable()

	_, err := d.Deploy(context.Background(), cfg)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, ms.SaveCalls)
	assert.Equal(t, StatusFailed, cfg.Status)
	assert.Empty(t, cfg.ID)
}

func TestDeployer_SaveDraftAndLoad(t *testing.T) {
	ms := store.NewMockStore()
	d := NewDeployer(ms, zerolog.Nop())
	ctx := context.Background()

	cfg := NewConfiguration("u1", "draft one")
	enable(cfg, service.FileSystem, false, service.Params{service.ParamDirectories: []string{"/data"}})
	require.NoError(t, d.SaveDraft(ctx, cfg))
	require.NotEmpty(t, cfg.ID)
	assert.Equal(t, StatusDraft, cfg.Status)

	loaded, err := d.Load(ctx, "u1", cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, loaded.ID)
	assert.Equal(t, "draft one", loaded.Name)
	assert.True(t, loaded.Services[service.FileSystem].Enabled)
	assert.Equal(t, []string{"/data"}, service.Directories(loaded.Services[service.FileSystem].Params))
	assert.NoError(t, loaded.CheckInvariants())
}

func TestDeployer_LoadRedactsToken(t *testing.T) {
	ms := store.NewMockStore()
	d := NewDeployer(ms, zerolog.Nop())
	ctx := context.Background()
	cfg := deployable()

	_, err := d.Deploy(ctx, cfg)
	require.NoError(t, err)

	loaded, err := d.Load(ctx, "u1", cfg.ID)
	require.NoError(t, err)
	hf := loaded.Services[service.HuggingFace]
	assert.Empty(t, hf.Params.String(service.ParamToken))
	assert.Equal(t, []string{"sdxl-turbo"}, service.SelectedModels(hf.Params))

	loaded.RestoreToken("hf_secretvalue")
	assert.True(t, Validate(loaded).IsValid)
	assert.Equal(t, StatusDeployed, loaded.Status)
}

func TestDeployer_LoadAndDeleteErrors(t *testing.T) {
	d := NewDeployer(store.NewMockStore(), zerolog.Nop())
	ctx := context.Background()

	_, err := d.Load(ctx, "u1", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, d.Delete(ctx, "u1", "missing"), store.ErrNotFound)
}
