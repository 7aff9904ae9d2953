package core

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ExportSchema returns the JSON Schema of the export document, indented.
func ExportSchema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}

	schema := reflector.Reflect(&ExportDocument{})
	schema.Title = "Claude Desktop MCP servers"
	schema.Description = "mcpServers document written by mcpdesk export"

	raw, err := schema.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("indent schema: %w", err)
	}
	return append(data, '\n'), nil
}
