package core

import (
	"encoding/json"
	"testing"
)

func TestExportSchema(t *testing.T) {
	data, err := ExportSchema()
	if err != nil {
		t.Fatalf("ExportSchema() error: %v", err)
	}

	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if schema["title"] != "Claude Desktop MCP servers" {
		t.Errorf("title = %v", schema["title"])
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties missing: %s", data)
	}
	if _, ok := props["mcpServers"]; !ok {
		t.Errorf("mcpServers property missing: %v", props)
	}
}
