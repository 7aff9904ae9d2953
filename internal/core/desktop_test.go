package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func sampleDoc() ExportDocument {
	return ExportDocument{MCPServers: map[string]ServerEntry{
		"webSearch":  {Command: "npx", Args: []string{"@anthropic-ai/mcp-web-search", "--results-count", "5"}},
		"fileSystem": {Command: "npx", Args: []string{"@anthropic-ai/mcp-filesystem", "--directory", "/a"}},
	}}
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("config is not valid JSON: %v\n%s", err, data)
	}
	return v
}

func TestInstallDesktopConfig_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Claude", "claude_desktop_config.json")

	res, err := InstallDesktopConfig(path, sampleDoc(), DesktopInstallOptions{})
	if err != nil {
		t.Fatalf("InstallDesktopConfig() error: %v", err)
	}
	if res.Count(DesktopActionWrote) != 2 {
		t.Errorf("wrote = %d, want 2", res.Count(DesktopActionWrote))
	}

	servers := readJSON(t, path)["mcpServers"].(map[string]any)
	if len(servers) != 2 {
		t.Errorf("servers = %v", servers)
	}
	ws := servers["webSearch"].(map[string]any)
	if ws["command"] != "npx" {
		t.Errorf("webSearch = %v", ws)
	}
}

func TestInstallDesktopConfig_PreservesCommentsAndKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude_desktop_config.json")
	orig := `{
	// window preferences
	"globalShortcut": "Ctrl+Space",
	"mcpServers": {
		"other": {"command": "uvx", "args": ["other-server"]},
	},
}
`
	if err := os.WriteFile(path, []byte(orig), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := InstallDesktopConfig(path, sampleDoc(), DesktopInstallOptions{}); err != nil {
		t.Fatalf("InstallDesktopConfig() error: %v", err)
	}

	data, _ := os.ReadFile(path)
	out := string(data)
	if !strings.Contains(out, "// window preferences") {
		t.Errorf("comment lost:\n%s", out)
	}
	for _, want := range []string{`"globalShortcut"`, `"other"`, `"webSearch"`, `"fileSystem"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s:\n%s", want, out)
		}
	}

	keys, err := DesktopServers(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(keys, []string{"fileSystem", "other", "webSearch"}) {
		t.Errorf("DesktopServers() = %v", keys)
	}
}

func TestInstallDesktopConfig_SkipsExistingUnlessForced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude_desktop_config.json")
	orig := `{"mcpServers": {"webSearch": {"command": "old", "args": []}}}`
	if err := os.WriteFile(path, []byte(orig), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := InstallDesktopConfig(path, sampleDoc(), DesktopInstallOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Count(DesktopActionSkipped) != 1 || res.Count(DesktopActionWrote) != 1 {
		t.Errorf("entries = %+v", res.Entries)
	}
	ws := readJSON(t, path)["mcpServers"].(map[string]any)["webSearch"].(map[string]any)
	if ws["command"] != "old" {
		t.Error("existing entry replaced without force")
	}

	if _, err := InstallDesktopConfig(path, sampleDoc(), DesktopInstallOptions{Force: true}); err != nil {
		t.Fatal(err)
	}
	ws = readJSON(t, path)["mcpServers"].(map[string]any)["webSearch"].(map[string]any)
	if ws["command"] != "npx" {
		t.Errorf("forced install did not replace entry: %v", ws)
	}
}

func TestUninstallDesktopServers_StrictJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude_desktop_config.json")
	orig := `{"mcpServers":{"webSearch":{"command":"npx"},"huggingFace_sdxl-turbo":{"command":"npx"},"other":{"command":"uvx"}},"theme":"dark"}`
	if err := os.WriteFile(path, []byte(orig), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := UninstallDesktopServers(path, nil)
	if err != nil {
		t.Fatalf("UninstallDesktopServers() error: %v", err)
	}
	if res.Count(DesktopActionRemoved) != 2 {
		t.Errorf("entries = %+v", res.Entries)
	}

	cfg := readJSON(t, path)
	servers := cfg["mcpServers"].(map[string]any)
	if _, ok := servers["other"]; !ok || len(servers) != 1 {
		t.Errorf("servers = %v, want only other", servers)
	}
	if cfg["theme"] != "dark" {
		t.Error("unrelated key lost")
	}
}

func TestUninstallDesktopServers_WithComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude_desktop_config.json")
	orig := `{
	// servers
	"mcpServers": {
		"fileSystem": {"command": "npx"},
		"other": {"command": "uvx"}, // keep me
	},
}
`
	if err := os.WriteFile(path, []byte(orig), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := UninstallDesktopServers(path, []string{"fileSystem", "webSearch"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Count(DesktopActionRemoved) != 1 || res.Count(DesktopActionSkipped) != 1 {
		t.Errorf("entries = %+v", res.Entries)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "// servers") {
		t.Errorf("comment lost:\n%s", data)
	}
	keys, err := DesktopServers(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(keys, []string{"other"}) {
		t.Errorf("DesktopServers() = %v", keys)
	}
}

func TestUninstallDesktopServers_MissingFile(t *testing.T) {
	res, err := UninstallDesktopServers(filepath.Join(t.TempDir(), "none.json"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entries) != 0 {
		t.Errorf("entries = %+v", res.Entries)
	}
}

func TestIsManagedServerKey(t *testing.T) {
	tests := map[string]bool{
		"fileSystem":                 true,
		"webSearch":                  true,
		"huggingFace":                true,
		"huggingFace_musicgen-large": true,
		"github":                     false,
	}
	for key, want := range tests {
		if got := IsManagedServerKey(key); got != want {
			t.Errorf("IsManagedServerKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestJSONPointerEscape(t *testing.T) {
	if got := jsonPointerEscape("a/b~c"); got != "a~1b~0c" {
		t.Errorf("jsonPointerEscape = %q", got)
	}
}
