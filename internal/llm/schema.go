package llm

import (
	"encoding/json"

	"github.com/Cyclone1070/codeagent/internal/tool"
)

// SchemaMap renders a parameter schema as a generic JSON object.
// A nil schema becomes an empty object schema.
func SchemaMap(s *tool.Schema) map[string]any {
	if s == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{"type": "object"}
	}
	if _, ok := out["properties"]; !ok {
		out["properties"] = map[string]any{}
	}
	return out
}

// ArgumentsOrEmpty returns args, or "{}" when the model sent nothing.
func ArgumentsOrEmpty(args string) string {
	if len(args) == 0 {
		return "{}"
	}
	return args
}
