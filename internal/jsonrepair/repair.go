// Package jsonrepair extracts a JSON value from model output that is
// supposed to be JSON but often is not quite: wrapped in markdown fences,
// surrounded by prose, or both. It is not a lenient JSON grammar; every
// parse attempt is strict, only the selected span varies.
package jsonrepair

import (
	"encoding/json"
	"strings"
)

// Recover attempts to parse a JSON value out of text. It never returns an
// error; ok is false when nothing parseable was found.
//
// Attempts, in order, first success wins:
//  1. strip code fences, parse the whole remainder
//  2. parse the span from the first '{' to the last '}' inclusive
func Recover(text string) (any, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	text = StripFences(text)

	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v, true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < 0 || start >= end {
		return nil, false
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err == nil {
		return v, true
	}
	return nil, false
}

// RecoverObject is Recover restricted to JSON objects, which is what every
// structured prompt in this service asks for.
func RecoverObject(text string) (map[string]any, bool) {
	v, ok := Recover(text)
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return obj, true
}

// StripFences removes markdown code-fence markers (``` with an optional
// language tag) from text. Fences may appear anywhere; generators have been
// observed closing a fence mid-answer and opening another.
func StripFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	var out strings.Builder
	for rest := text; ; {
		i := strings.Index(rest, "```")
		if i < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:i])
		rest = rest[i+3:]
		// Drop a language tag directly after the opening marker.
		if j := strings.IndexAny(rest, " \t\r\n"); j >= 0 {
			tag := rest[:j]
			if tag != "" && isFenceTag(tag) {
				rest = rest[j:]
			}
		}
	}
	return strings.TrimSpace(out.String())
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// MarshalCanonical encodes v without HTML escaping, matching the form the
// recovery result round-trips through in tests.
func MarshalCanonical(v any) ([]byte, error) {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return []byte(strings.TrimRight(buf.String(), "\n")), nil
}
