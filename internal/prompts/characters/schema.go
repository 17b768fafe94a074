package characters

import (
	"encoding/json"

	"github.com/jackzampolin/fable/internal/providers"
)

// Schema is the JSON schema for character cast output.
const Schema = `{
	"type": "object",
	"required": ["characters"],
	"additionalProperties": false,
	"properties": {
		"characters": {
			"type": "array",
			"minItems": 1,
			"maxItems": 6,
			"items": {
				"type": "object",
				"required": ["name", "role", "description", "visual_description"],
				"additionalProperties": false,
				"properties": {
					"name": {"type": "string"},
					"role": {"type": "string"},
					"description": {"type": "string"},
					"visual_description": {"type": "string"}
				}
			}
		}
	}
}`

func responseFormat() *providers.ResponseFormat {
	return &providers.ResponseFormat{
		Type:       "json_schema",
		JSONSchema: json.RawMessage(Schema),
	}
}
