package core

import (
	"encoding/json"
	"testing"

	"github.com/barysiuk/mcpdesk/internal/core/service"
)

func TestNewConfiguration_Defaults(t *testing.T) {
	cfg := NewConfiguration("u1", "")

	if cfg.Status != StatusDraft {
		t.Errorf("Status = %q, want draft", cfg.Status)
	}
	if cfg.Name == "" {
		t.Error("default name should be set")
	}
	if len(cfg.Services) != 3 {
		t.Fatalf("len(Services) = %d, want 3", len(cfg.Services))
	}
	for id, sc := range cfg.Services {
		if sc.Enabled || sc.Configured {
			t.Errorf("%s should start disabled and unconfigured", id)
		}
	}
	if !cfg.Services[service.HuggingFace].RequiresSubscription {
		t.Error("huggingFace should require a subscription")
	}
	if got := cfg.GlobalParams.Int("max_tokens", 0); got != 100 {
		t.Errorf("max_tokens = %d, want 100", got)
	}
	if err := cfg.CheckInvariants(); err != nil {
		t.Errorf("CheckInvariants() = %v", err)
	}
}

func TestNormalize_RepairsLoadedConfiguration(t *testing.T) {
	raw := `{
		"name": "loaded",
		"services": {
			"webSearch": {"enabled": false, "configured": true, "params": {"resultsCount": 3}},
			"legacy": {"enabled": true, "configured": true, "params": {}},
			"huggingFace": {"enabled": true, "configured": true, "requiresSubscription": false,
				"params": {"token": "hf_abcdefgh", "selectedModels": ["sdxl-turbo"]}}
		}
	}`
	var cfg Configuration
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatal(err)
	}
	cfg.Normalize()

	if _, ok := cfg.Services["legacy"]; ok {
		t.Error("unknown service should be dropped")
	}
	if cfg.Services[service.FileSystem] == nil {
		t.Error("missing service should be added")
	}
	ws := cfg.Services[service.WebSearch]
	if ws.Configured {
		t.Error("disabled service must not stay configured")
	}
	if ws.Params.Int(service.ParamResultsCount, 0) != 3 {
		t.Errorf("stored param lost: %v", ws.Params)
	}
	if !ws.Params.Bool(service.ParamSafeSearch, false) {
		t.Error("missing default param should be filled in")
	}
	if !cfg.Services[service.HuggingFace].RequiresSubscription {
		t.Error("RequiresSubscription should come from the registry")
	}
	if len(cfg.Models) != 1 || cfg.Models[0].ID != "sdxl-turbo" || cfg.Models[0].Name != "SDXL Turbo" {
		t.Errorf("Models = %+v, want sdxl-turbo synced from selection", cfg.Models)
	}
	if cfg.Status != StatusDraft || cfg.GlobalParams == nil {
		t.Errorf("status/global params not defaulted: %q %v", cfg.Status, cfg.GlobalParams)
	}
	if err := cfg.CheckInvariants(); err != nil {
		t.Errorf("CheckInvariants() = %v", err)
	}
}

func TestEffectiveModelParams(t *testing.T) {
	cfg := NewConfiguration("u1", "x")
	cfg.Models = []ModelConfig{{ID: "sdxl-turbo", Params: service.Params{"temperature": 0.2}}}

	p := cfg.EffectiveModelParams("sdxl-turbo")
	if got := p["temperature"]; got != 0.2 {
		t.Errorf("temperature = %v, want model override 0.2", got)
	}
	if got := p.Int("max_tokens", 0); got != 100 {
		t.Errorf("max_tokens = %d, want global 100", got)
	}

	other := cfg.EffectiveModelParams("musicgen-large")
	if got := other["temperature"]; got != 0.7 {
		t.Errorf("temperature = %v, want global 0.7", got)
	}
}

func TestCheckInvariants_DetectsConfiguredButDisabled(t *testing.T) {
	cfg := NewConfiguration("u1", "x")
	cfg.Services[service.FileSystem].Configured = true
	if err := cfg.CheckInvariants(); err == nil {
		t.Error("CheckInvariants() should fail")
	}
}

func TestClone_IsDeep(t *testing.T) {
	cfg := NewConfiguration("u1", "x")
	cfg.Services[service.FileSystem].Params = service.Params{service.ParamDirectories: []string{"/a"}}

	cp := cfg.Clone()
	cp.Services[service.FileSystem].Enabled = true
	cp.Services[service.FileSystem].Params[service.ParamDirectories] = []string{"/b"}
	cp.GlobalParams["temperature"] = 1.0

	if cfg.Services[service.FileSystem].Enabled {
		t.Error("clone shares service config")
	}
	if got := service.Directories(cfg.Services[service.FileSystem].Params); got[0] != "/a" {
		t.Errorf("clone shares params: %v", got)
	}
	if cfg.GlobalParams["temperature"] != 0.7 {
		t.Error("clone shares global params")
	}
}

func TestRedactedAndRestoreToken(t *testing.T) {
	cfg := NewConfiguration("u1", "x")
	hf := cfg.Services[service.HuggingFace]
	hf.Params = service.SetToken(hf.Params, "hf_secretvalue")

	red := cfg.Redacted()
	if got := red.Services[service.HuggingFace].Params.String(service.ParamToken); got != "" {
		t.Errorf("redacted token = %q", got)
	}
	if got := hf.Params.String(service.ParamToken); got != "hf_secretvalue" {
		t.Errorf("original token changed to %q", got)
	}

	red.RestoreToken("hf_secretvalue")
	if got := red.Services[service.HuggingFace].Params.String(service.ParamToken); got != "hf_secretvalue" {
		t.Errorf("restored token = %q", got)
	}
	red.RestoreToken("hf_other")
	if got := red.Services[service.HuggingFace].Params.String(service.ParamToken); got != "hf_secretvalue" {
		t.Error("RestoreToken must not overwrite an existing token")
	}
}
