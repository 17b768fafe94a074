package prompts

import (
	"reflect"
	"testing"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "simple variables",
			text: "Hello {{.Name}}, you have {{.Count}} items",
			want: []string{"Count", "Name"},
		},
		{
			name: "nested fields",
			text: "{{.Brief.Theme}} and {{ .Concept.Title }}",
			want: []string{"Brief.Theme", "Concept.Title"},
		},
		{
			name: "duplicates collapse",
			text: "{{.X}} {{.X}} {{.X}}",
			want: []string{"X"},
		},
		{
			name: "no variables",
			text: "plain text",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractVariables(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractVariables() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	t.Run("renders data", func(t *testing.T) {
		got, err := Render("Page {{.Index}}", struct{ Index int }{3})
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if got != "Page 3" {
			t.Errorf("Render() = %q", got)
		}
	})

	t.Run("bad template errors", func(t *testing.T) {
		if _, err := Render("{{.Index", nil); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("MustRender falls back to raw text", func(t *testing.T) {
		if got := MustRender("{{.Index", nil); got != "{{.Index" {
			t.Errorf("MustRender() = %q", got)
		}
	})
}

func TestHashText(t *testing.T) {
	a := HashText("hello")
	b := HashText("hello")
	c := HashText("world")
	if a != b {
		t.Error("same text produced different hashes")
	}
	if a == c {
		t.Error("different text produced same hash")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64", len(a))
	}
}
