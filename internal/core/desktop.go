package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/barysiuk/mcpdesk/internal/core/service"
)

const (
	desktopConfigFile = "claude_desktop_config.json"
	desktopServersKey = "mcpServers"
)

// DefaultDesktopConfigPath returns where Claude Desktop keeps its config on
// this OS.
func DefaultDesktopConfigPath() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Claude", desktopConfigFile)
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "Claude", desktopConfigFile)
	default:
		xdg := os.Getenv("XDG_CONFIG_HOME")
		if xdg == "" {
			xdg = filepath.Join(home, ".config")
		}
		return filepath.Join(xdg, "Claude", desktopConfigFile)
	}
}

// Desktop actions reported per server key.
const (
	DesktopActionWrote   = "wrote"
	DesktopActionSkipped = "skipped"
	DesktopActionRemoved = "removed"
)

// DesktopEntryResult is the outcome for one mcpServers key.
type DesktopEntryResult struct {
	Key     string
	Action  string
	Message string
}

// DesktopResult reports what happened to the Claude Desktop config file.
type DesktopResult struct {
	Path    string
	Entries []DesktopEntryResult
}

// Count returns how many entries ended with action.
func (r *DesktopResult) Count(action string) int {
	n := 0
	for _, e := range r.Entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

// DesktopInstallOptions configures InstallDesktopConfig.
type DesktopInstallOptions struct {
	Force bool // replace entries that already exist
}

// InstallDesktopConfig merges the export's servers into the Claude Desktop
// config at path. Comments, formatting and unrelated keys are preserved.
// Existing entries are skipped unless opts.Force is set.
func InstallDesktopConfig(path string, doc ExportDocument, opts DesktopInstallOptions) (*DesktopResult, error) {
	content, err := readConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		content = "{}"
	}

	root, err := hujson.Parse([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	topPtr := "/" + jsonPointerEscape(desktopServersKey)
	if root.Find(topPtr) == nil {
		patch := fmt.Sprintf(`[{"op":"add","path":%q,"value":{}}]`, topPtr)
		if err := root.Patch([]byte(patch)); err != nil {
			return nil, fmt.Errorf("creating %s: %w", desktopServersKey, err)
		}
	}

	result := &DesktopResult{Path: path}
	for _, key := range doc.Keys() {
		entryPtr := topPtr + "/" + jsonPointerEscape(key)
		exists := root.Find(entryPtr) != nil
		if exists && !opts.Force {
			result.Entries = append(result.Entries, DesktopEntryResult{
				Key: key, Action: DesktopActionSkipped, Message: "already exists, use --force",
			})
			continue
		}

		value, err := json.Marshal(doc.MCPServers[key])
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", key, err)
		}
		op := "add"
		if exists {
			op = "replace"
		}
		patch := fmt.Sprintf(`[{"op":%q,"path":%q,"value":%s}]`, op, entryPtr, value)
		if err := root.Patch([]byte(patch)); err != nil {
			return nil, fmt.Errorf("writing %s: %w", key, err)
		}
		result.Entries = append(result.Entries, DesktopEntryResult{Key: key, Action: DesktopActionWrote})
	}

	if result.Count(DesktopActionWrote) == 0 {
		return result, nil
	}
	if err := writeConfigFile(path, string(finalizeConfig(&root))); err != nil {
		return nil, err
	}
	return result, nil
}

// DesktopServers returns the mcpServers keys present in the config at path.
func DesktopServers(path string) ([]string, error) {
	content, err := readConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if content == "" {
		return nil, nil
	}
	std, err := hujson.Standardize([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	var keys []string
	gjson.GetBytes(std, desktopServersKey).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	sort.Strings(keys)
	return keys, nil
}

// IsManagedServerKey reports whether key is one mcpdesk writes.
func IsManagedServerKey(key string) bool {
	if _, ok := service.ByID(service.ID(key)); ok {
		return true
	}
	return strings.HasPrefix(key, string(service.HuggingFace)+"_")
}

// UninstallDesktopServers removes the given keys from the config at path.
// With no keys it removes every server mcpdesk manages. Strict JSON files are
// edited in place with sjson; files with comments go through the JWCC AST so
// the comments survive.
func UninstallDesktopServers(path string, keys []string) (*DesktopResult, error) {
	result := &DesktopResult{Path: path}

	content, err := readConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if content == "" {
		return result, nil
	}

	present, err := DesktopServers(path)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		for _, k := range present {
			if IsManagedServerKey(k) {
				keys = append(keys, k)
			}
		}
	}

	root, err := hujson.Parse([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	strict := root.IsStandard()

	for _, key := range keys {
		if !containsString(present, key) {
			result.Entries = append(result.Entries, DesktopEntryResult{
				Key: key, Action: DesktopActionSkipped, Message: "entry not found",
			})
			continue
		}

		if strict {
			content, err = sjson.Delete(content, desktopServersKey+"."+escapeJSONKey(key))
			if err != nil {
				return nil, fmt.Errorf("removing %s: %w", key, err)
			}
		} else {
			ptr := "/" + jsonPointerEscape(desktopServersKey) + "/" + jsonPointerEscape(key)
			patch := fmt.Sprintf(`[{"op":"remove","path":%q}]`, ptr)
			if err := root.Patch([]byte(patch)); err != nil {
				return nil, fmt.Errorf("removing %s: %w", key, err)
			}
		}
		result.Entries = append(result.Entries, DesktopEntryResult{Key: key, Action: DesktopActionRemoved})
	}

	if result.Count(DesktopActionRemoved) == 0 {
		return result, nil
	}
	if !strict {
		content = string(finalizeConfig(&root))
	}
	if err := writeConfigFile(path, content); err != nil {
		return nil, err
	}
	return result, nil
}

// finalizeConfig formats the JWCC AST and produces final output bytes.
func finalizeConfig(root *hujson.Value) []byte {
	root.Format()
	removeTrailingCommas(root)
	return root.Pack()
}

// removeTrailingCommas walks the JWCC AST and removes trailing commas.
func removeTrailingCommas(v *hujson.Value) {
	switch vv := v.Value.(type) {
	case *hujson.Object:
		for i := range vv.Members {
			removeTrailingCommas(&vv.Members[i].Name)
			removeTrailingCommas(&vv.Members[i].Value)
		}
		if len(vv.Members) > 0 {
			vv.Members[len(vv.Members)-1].Value.AfterExtra = nil
		}
	case *hujson.Array:
		for i := range vv.Elements {
			removeTrailingCommas(&vv.Elements[i])
		}
		if len(vv.Elements) > 0 {
			vv.Elements[len(vv.Elements)-1].AfterExtra = nil
		}
	}
}

// jsonPointerEscape escapes a key for use in an RFC 6901 JSON pointer.
func jsonPointerEscape(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

// escapeJSONKey escapes a key for use with gjson/sjson path syntax.
func escapeJSONKey(key string) string {
	var b strings.Builder
	for _, c := range key {
		if c == '.' || c == '*' || c == '?' || c == '#' || c == '|' || c == '@' {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// readConfigFile returns "" if the file does not exist.
func readConfigFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func writeConfigFile(path string, content string) error {
	return writeFileAtomic(path, []byte(content), 0o644)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
