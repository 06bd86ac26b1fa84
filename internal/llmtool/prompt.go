package llmtool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// PromptSpec defines the sections of a structured prompt. Empty sections are
// omitted from the rendered text.
type PromptSpec struct {
	Purpose      string
	Input        any
	OutputSchema string
	Rules        []string
}

// strictJSONRules is prepended to every rendered prompt. The generator is
// instructed, not guaranteed, to comply; recovery parsing handles the rest.
var strictJSONRules = []string{
	"Respond with ONLY valid JSON",
	"No markdown",
	"No comments",
	"No explanations",
	"Output must start with '{' and end with '}'",
	"Do not include trailing commas",
}

// BuildPrompt renders spec into the sectioned prompt format.
func BuildPrompt(spec PromptSpec) (string, error) {
	if strings.TrimSpace(spec.Purpose) == "" {
		return "", fmt.Errorf("llmtool: purpose is empty")
	}
	inputJSON, err := formatAnyJSON(spec.Input)
	if err != nil {
		return "", fmt.Errorf("llmtool: encode input: %w", err)
	}

	var buf bytes.Buffer
	writeSection(&buf, "RULES", formatList(append(strictJSONRules, spec.Rules...)))
	writeSection(&buf, "PURPOSE", spec.Purpose)
	writeSection(&buf, "INPUT", inputJSON)
	writeSection(&buf, "OUTPUT_SCHEMA", spec.OutputSchema)

	return strings.TrimSpace(buf.String()) + "\n", nil
}

func formatAnyJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func formatList(items []string) string {
	var buf strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(&buf, "- %s\n", item)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
