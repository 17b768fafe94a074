package storytext

import (
	"encoding/json"

	"github.com/jackzampolin/fable/internal/providers"
)

// Schema is the JSON schema for story text output.
const Schema = `{
	"type": "object",
	"required": ["pages"],
	"additionalProperties": false,
	"properties": {
		"pages": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["index", "text"],
				"additionalProperties": false,
				"properties": {
					"index": {"type": "integer", "minimum": 0},
					"text": {"type": "string"}
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
