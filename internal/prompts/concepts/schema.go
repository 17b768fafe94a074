package concepts

import (
	"encoding/json"

	"github.com/jackzampolin/fable/internal/providers"
)

// Schema is the JSON schema for concept generation output.
const Schema = `{
	"type": "object",
	"required": ["concepts"],
	"additionalProperties": false,
	"properties": {
		"concepts": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["title", "logline", "style_notes"],
				"additionalProperties": false,
				"properties": {
					"title": {"type": "string"},
					"logline": {"type": "string"},
					"style_notes": {"type": "string"}
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
