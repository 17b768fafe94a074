package prompts

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"text/template"
)

// variablePattern matches Go template references like {{.Name}} or
// {{ .Book.Title }}.
var variablePattern = regexp.MustCompile(`\{\{\s*\.([a-zA-Z_][a-zA-Z0-9_.]*)\s*\}\}`)

// ExtractVariables returns the sorted, deduplicated variable names
// referenced by a template string. Nested fields keep their dotted path.
func ExtractVariables(text string) []string {
	seen := make(map[string]bool)
	var vars []string
	for _, match := range variablePattern.FindAllStringSubmatch(text, -1) {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			vars = append(vars, name)
		}
	}
	sort.Strings(vars)
	return vars
}

// HashText returns a SHA256 hash of the text for change detection.
func HashText(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// Render executes a template string against data. Used by the stage
// packages to build user prompts, including override text which is only
// known at runtime.
func Render(text string, data any) (string, error) {
	tmpl, err := template.New("prompt").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MustRender is Render with a fallback: on any template error it returns
// the raw text so a bad override degrades instead of failing the stage.
func MustRender(text string, data any) string {
	out, err := Render(text, data)
	if err != nil {
		return text
	}
	return out
}
