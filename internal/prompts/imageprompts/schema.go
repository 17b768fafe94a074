package imageprompts

import (
	"encoding/json"

	"github.com/jackzampolin/fable/internal/providers"
)

// Schema is the JSON schema for image prompt output.
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
				"required": ["index", "image_prompt"],
				"additionalProperties": false,
				"properties": {
					"index": {"type": "integer", "minimum": 0},
					"image_prompt": {"type": "string"}
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
