package core

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestSaveTokenEnv_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".env")

	if err := SaveTokenEnv(path, "hf_abcdefgh"); err != nil {
		t.Fatalf("SaveTokenEnv() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `HF_TOKEN="hf_abcdefgh"`) {
		t.Errorf("env file = %q", data)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("permissions = %o, want 600", perm)
		}
	}
}

func TestSaveTokenEnv_KeepsOtherVars(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("OTHER=value\nHF_TOKEN=old\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := SaveTokenEnv(path, "hf_newtoken"); err != nil {
		t.Fatalf("SaveTokenEnv() error: %v", err)
	}

	vars, err := readEnvFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if vars["OTHER"] != "value" {
		t.Errorf("OTHER = %q, want value", vars["OTHER"])
	}
	if vars["HF_TOKEN"] != "hf_newtoken" {
		t.Errorf("HF_TOKEN = %q, want hf_newtoken", vars["HF_TOKEN"])
	}
}

func TestResolveToken_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := SaveTokenEnv(path, "hf_fromfile"); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HF_TOKEN", "")
	got, err := ResolveToken(path)
	if err != nil {
		t.Fatalf("ResolveToken() error: %v", err)
	}
	if got.Value != "hf_fromfile" || got.Source != EnvSourceFile {
		t.Errorf("ResolveToken() = %+v, want file value", got)
	}

	t.Setenv("HF_TOKEN", "hf_fromprocess")
	got, err = ResolveToken(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Value != "hf_fromprocess" || got.Source != EnvSourceProcess {
		t.Errorf("ResolveToken() = %+v, want process value", got)
	}
}

func TestResolveToken_Missing(t *testing.T) {
	t.Setenv("HF_TOKEN", "")
	got, err := ResolveToken(filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("ResolveToken() error: %v", err)
	}
	if got.Found() {
		t.Errorf("ResolveToken() = %+v, want not found", got)
	}
}
