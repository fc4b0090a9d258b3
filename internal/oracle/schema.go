package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The oracle speaks JSON, but it speaks it unreliably. Every
// structured response is schema-checked before anything downstream
// trusts a field.

const findingSchemaJSON = `{
  "type": "object",
  "required": ["case_note", "confidence", "request_arrest"],
  "properties": {
    "case_note": {"type": "string"},
    "suspect": {"type": ["string", "null"]},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "request_arrest": {"type": "boolean"},
    "next_steps": {"type": ["string", "null"]}
  }
}`

const verdictSchemaJSON = `{
  "type": "object",
  "required": ["guilty", "reasoning", "judge_statement"],
  "properties": {
    "guilty": {"type": "boolean"},
    "fine": {"type": "integer", "minimum": 0},
    "exile_days": {"type": "integer", "minimum": 0},
    "reasoning": {"type": "string"},
    "judge_statement": {"type": "string"}
  }
}`

var (
	findingSchema = jsonschema.MustCompileString("finding.schema.json", findingSchemaJSON)
	verdictSchema = jsonschema.MustCompileString("verdict.schema.json", verdictSchemaJSON)
)

// stripFences removes the ```json fences models love to add.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "```", 3)
		if len(parts) >= 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(strings.TrimSpace(s), "json")
	}
	return strings.TrimSpace(s)
}

func decodeChecked(raw string, schema *jsonschema.Schema, out any) error {
	clean := stripFences(raw)
	var loose any
	if err := json.Unmarshal([]byte(clean), &loose); err != nil {
		return fmt.Errorf("oracle response is not JSON: %w", err)
	}
	if err := schema.Validate(loose); err != nil {
		return fmt.Errorf("oracle response failed schema: %w", err)
	}
	return json.Unmarshal([]byte(clean), out)
}
