package providers

import (
	"encoding/json"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"title": "The Fox"}`,
			want:  `{"title": "The Fox"}`,
		},
		{
			name:  "fenced with language tag",
			input: "Here you go:\n```json\n{\"title\": \"The Fox\"}\n```\n",
			want:  `{"title": "The Fox"}`,
		},
		{
			name:  "fenced without language tag",
			input: "```\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "prose before and after object",
			input: `Sure! {"a": 1} Hope that helps.`,
			want:  `{"a": 1}`,
		},
		{
			name:  "top-level array",
			input: `The pages are: [{"index": 0}, {"index": 1}]`,
			want:  `[{"index": 0}, {"index": 1}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.input)
			if got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateStructured(t *testing.T) {
	schema := json.RawMessage(`{
		"type": "object",
		"required": ["title", "pages"],
		"properties": {
			"title": {"type": "string"},
			"pages": {"type": "integer", "minimum": 1}
		}
	}`)

	t.Run("valid payload", func(t *testing.T) {
		parsed, err := ValidateStructured(schema, `{"title": "The Fox", "pages": 12}`)
		if err != nil {
			t.Fatalf("ValidateStructured() error = %v", err)
		}
		var out struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal(parsed, &out); err != nil {
			t.Fatalf("unmarshal parsed: %v", err)
		}
		if out.Title != "The Fox" {
			t.Errorf("Title = %q", out.Title)
		}
	})

	t.Run("valid payload inside fences", func(t *testing.T) {
		if _, err := ValidateStructured(schema, "```json\n{\"title\": \"x\", \"pages\": 3}\n```"); err != nil {
			t.Errorf("ValidateStructured() error = %v", err)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		if _, err := ValidateStructured(schema, `{"title": "x"}`); err == nil {
			t.Error("expected validation error for missing pages")
		}
	})

	t.Run("schema violation", func(t *testing.T) {
		if _, err := ValidateStructured(schema, `{"title": "x", "pages": 0}`); err == nil {
			t.Error("expected validation error for pages below minimum")
		}
	})

	t.Run("not JSON at all", func(t *testing.T) {
		if _, err := ValidateStructured(schema, "I refuse to answer."); err == nil {
			t.Error("expected error for non-JSON content")
		}
	})
}
