package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/barysiuk/mcpdesk/internal/core/service"
	"github.com/barysiuk/mcpdesk/internal/core/tier"
	"github.com/barysiuk/mcpdesk/internal/store"
)

func TestDraftStore_RoundTrip(t *testing.T) {
	ds := NewDraftStore(filepath.Join(t.TempDir(), "draft.yaml"))

	cfg := NewConfiguration("u1", "draft")
	enable(cfg, service.WebSearch, true, service.Params{service.ParamResultsCount: 7})
	enable(cfg, service.HuggingFace, false, service.Params{
		service.ParamToken:          "hf_secretvalue",
		service.ParamSelectedModels: []string{"sdxl-turbo"},
	})
	cfg.Normalize()

	in := &Draft{Configuration: cfg, State: WizardState{Step: StepConfigureServices, Active: service.HuggingFace}}
	if err := ds.Save(in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	data, err := os.ReadFile(ds.Path())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "hf_secretvalue") {
		t.Errorf("token written to draft:\n%s", data)
	}

	got, err := ds.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.State != in.State {
		t.Errorf("State = %+v, want %+v", got.State, in.State)
	}
	ws := got.Configuration.Services[service.WebSearch]
	if !ws.Configured || ws.Params.Int(service.ParamResultsCount, 0) != 7 {
		t.Errorf("webSearch = %+v", ws)
	}
	if models := service.SelectedModels(got.Configuration.Services[service.HuggingFace].Params); len(models) != 1 {
		t.Errorf("selected models = %v", models)
	}
	if got.Configuration.GlobalParams.Int("max_tokens", 0) != 100 {
		t.Errorf("global params = %v", got.Configuration.GlobalParams)
	}
	if cfg.Services[service.HuggingFace].Params.String(service.ParamToken) != "hf_secretvalue" {
		t.Error("Save must not redact the caller's configuration")
	}
}

func TestDraftStore_LoadMissing(t *testing.T) {
	ds := NewDraftStore(filepath.Join(t.TempDir(), "draft.yaml"))
	if _, err := ds.Load(); !errors.Is(err, ErrNoDraft) {
		t.Errorf("Load() = %v, want ErrNoDraft", err)
	}
	if err := ds.Clear(); err != nil {
		t.Errorf("Clear() on missing draft = %v", err)
	}
}

func TestDraftStore_Clear(t *testing.T) {
	ds := NewDraftStore(filepath.Join(t.TempDir(), "draft.yaml"))
	if err := ds.Save(&Draft{Configuration: NewConfiguration("u1", "x")}); err != nil {
		t.Fatal(err)
	}
	if err := ds.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := ds.Load(); !errors.Is(err, ErrNoDraft) {
		t.Errorf("Load() after Clear = %v, want ErrNoDraft", err)
	}
}

// lockedProfiles fails every read, like a database held by another process.
type lockedProfiles struct{}

func (lockedProfiles) GetProfile(context.Context, string) (*store.Profile, error) {
	return nil, errors.New("database is locked")
}

func (lockedProfiles) UpsertProfile(context.Context, *store.Profile) error {
	return errors.New("database is locked")
}

func saveHuggingFaceDraft(t *testing.T, ds *DraftStore) {
	t.Helper()
	cfg := NewConfiguration("u1", "models")
	enable(cfg, service.HuggingFace, true, service.Params{
		service.ParamToken:          "hf_secretvalue",
		service.ParamSelectedModels: []string{"sdxl-turbo", "musicgen-large"},
	})
	cfg.Normalize()
	draft := &Draft{Configuration: cfg, State: WizardState{Step: StepValidate, Active: service.HuggingFace}}
	if err := ds.Save(draft); err != nil {
		t.Fatal(err)
	}
}

func TestResumeDraft(t *testing.T) {
	ctx := context.Background()
	ds := NewDraftStore(filepath.Join(t.TempDir(), "draft.yaml"))
	saveHuggingFaceDraft(t, ds)

	profiles := store.NewMockStore()
	id := NewLocalIdentity(&Settings{UserID: "u1"}, profiles)
	if err := id.UpdateSubscriptionTier(ctx, tier.Complete); err != nil {
		t.Fatal(err)
	}

	w, err := ResumeDraft(ctx, ds, id, "hf_secretvalue")
	if err != nil {
		t.Fatalf("ResumeDraft() error: %v", err)
	}
	if w.Tier() != tier.Complete || w.Step() != StepValidate {
		t.Errorf("tier = %s, step = %s", w.Tier(), w.Step())
	}
	hf := w.Config().Services[service.HuggingFace]
	if !hf.Enabled || hf.Params.String(service.ParamToken) != "hf_secretvalue" {
		t.Errorf("huggingFace = %+v", hf)
	}
}

func TestResumeDraft_TierUnreadableLeavesDraftAlone(t *testing.T) {
	ds := NewDraftStore(filepath.Join(t.TempDir(), "draft.yaml"))
	saveHuggingFaceDraft(t, ds)
	before, err := os.ReadFile(ds.Path())
	if err != nil {
		t.Fatal(err)
	}

	id := NewLocalIdentity(&Settings{UserID: "u1"}, lockedProfiles{})
	w, err := ResumeDraft(context.Background(), ds, id, "")
	if err == nil || !strings.Contains(err.Error(), "database is locked") {
		t.Fatalf("ResumeDraft() = %v, want the tier error", err)
	}
	if w != nil {
		t.Error("no wizard should be returned when the tier is unknown")
	}

	after, err := os.ReadFile(ds.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != string(before) {
		t.Errorf("draft changed:\n%s", after)
	}
	got, err := ds.Load()
	if err != nil {
		t.Fatal(err)
	}
	if hf := got.Configuration.Services[service.HuggingFace]; !hf.Enabled || len(got.Configuration.Models) != 2 {
		t.Errorf("huggingFace = %+v, models = %v", hf, got.Configuration.Models)
	}
}

func TestResumeDraft_NoDraft(t *testing.T) {
	ds := NewDraftStore(filepath.Join(t.TempDir(), "draft.yaml"))
	id := NewLocalIdentity(&Settings{UserID: "u1"}, store.NewMockStore())
	if _, err := ResumeDraft(context.Background(), ds, id, ""); !errors.Is(err, ErrNoDraft) {
		t.Errorf("ResumeDraft() = %v, want ErrNoDraft", err)
	}
}
