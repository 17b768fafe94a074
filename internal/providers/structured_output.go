package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateStructured extracts the JSON payload from model output and
// validates it against the given JSON schema. Models frequently wrap
// JSON in markdown fences or prose; the extractor tolerates both.
func ValidateStructured(schemaRaw json.RawMessage, content string) (json.RawMessage, error) {
	payload := ExtractJSON(content)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object found in model output")
	}

	var doc any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("model output is not valid JSON: %w", err)
	}

	if len(schemaRaw) > 0 {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("schema.json", bytes.NewReader(schemaRaw)); err != nil {
			return nil, fmt.Errorf("failed to load schema: %w", err)
		}
		schema, err := compiler.Compile("schema.json")
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema: %w", err)
		}
		if err := schema.Validate(doc); err != nil {
			return nil, fmt.Errorf("schema validation failed: %w", err)
		}
	}

	return json.RawMessage(payload), nil
}

// ExtractJSON returns the first JSON object or array in the text,
// stripping a surrounding markdown code fence if present. Returns ""
// when no JSON delimiter is found.
func ExtractJSON(content string) string {
	text := strings.TrimSpace(content)

	// Strip a ```json ... ``` fence.
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return ""
	}

	open := text[start]
	var closer byte = '}'
	if open == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end <= start {
		return ""
	}
	return text[start : end+1]
}
