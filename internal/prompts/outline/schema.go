package outline

import (
	"encoding/json"

	"github.com/jackzampolin/fable/internal/providers"
)

// Schema is the JSON schema for outline output. Page indexes are
// zero-based and validated against the requested range by the caller.
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
				"required": ["index", "outline"],
				"additionalProperties": false,
				"properties": {
					"index": {"type": "integer", "minimum": 0},
					"outline": {"type": "string"}
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
