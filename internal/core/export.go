package core

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/barysiuk/mcpdesk/internal/core/service"
)

// ServerEntry is how Claude Desktop launches one MCP server.
type ServerEntry struct {
	Command string   `json:"command" jsonschema:"description=Executable launched by Claude Desktop,example=npx"`
	Args    []string `json:"args" jsonschema:"description=Arguments passed to the command"`
}

// ExportDocument is the mcpServers document Claude Desktop reads.
type ExportDocument struct {
	MCPServers map[string]ServerEntry `json:"mcpServers" jsonschema:"description=MCP servers keyed by name"`
}

// Keys returns the server keys in the order they are rendered.
func (d ExportDocument) Keys() []string {
	keys := make([]string, 0, len(d.MCPServers))
	for k := range d.MCPServers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GenerateExport renders every enabled and configured service in registry
// order. The result depends only on cfg; the Hugging Face token value is
// never included.
func GenerateExport(cfg *Configuration) ExportDocument {
	doc := ExportDocument{MCPServers: map[string]ServerEntry{}}
	if cfg == nil {
		return doc
	}

	for _, s := range service.All() {
		sc := cfg.Services[s.ID()]
		if sc == nil || !sc.Enabled || !sc.Configured {
			continue
		}
		for _, e := range s.Export(sc.Params, cfg.EffectiveModelParams) {
			args := e.Args
			if args == nil {
				args = []string{}
			}
			doc.MCPServers[e.Key] = ServerEntry{Command: e.Command, Args: args}
		}
	}
	return doc
}

// MarshalExport renders the document as 2-space indented JSON with a
// trailing newline. Keys are sorted, so equal documents are byte-identical.
func MarshalExport(doc ExportDocument) ([]byte, error) {
	if doc.MCPServers == nil {
		doc.MCPServers = map[string]ServerEntry{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling export: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportJSON generates and marshals the export for cfg.
func ExportJSON(cfg *Configuration) ([]byte, error) {
	return MarshalExport(GenerateExport(cfg))
}
