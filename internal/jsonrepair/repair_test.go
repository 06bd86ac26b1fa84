package jsonrepair

import (
	"reflect"
	"testing"
)

func TestRecover_DirectJSON(t *testing.T) {
	v, ok := Recover(`{"a": 1, "b": ["x"]}`)
	if !ok {
		t.Fatalf("expected recovery")
	}
	want := map[string]any{"a": float64(1), "b": []any{"x"}}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %#v", v)
	}
}

func TestRecover_CodeFences(t *testing.T) {
	cases := []string{
		"```json\n{\"a\": 1}\n```",
		"```\n{\"a\": 1}\n```",
		"  ```json\n{\"a\": 1}\n```  ",
	}
	for _, in := range cases {
		v, ok := Recover(in)
		if !ok {
			t.Fatalf("expected recovery for %q", in)
		}
		if !reflect.DeepEqual(v, map[string]any{"a": float64(1)}) {
			t.Fatalf("got %#v for %q", v, in)
		}
	}
}

func TestRecover_SurroundingProse(t *testing.T) {
	in := "Sure! Here is the architecture you asked for:\n{\"modules\": []}\nHope this helps."
	v, ok := Recover(in)
	if !ok {
		t.Fatalf("expected recovery")
	}
	if !reflect.DeepEqual(v, map[string]any{"modules": []any{}}) {
		t.Fatalf("got %#v", v)
	}
}

func TestRecover_NoBraces(t *testing.T) {
	for _, in := range []string{"", "not json", "just some text", "[1, 2"} {
		if _, ok := Recover(in); ok {
			t.Fatalf("expected no recovery for %q", in)
		}
	}
}

// Two top-level objects form a span from the first '{' to the last '}' that
// is not valid JSON; recovery must fail rather than pick one of them.
func TestRecover_MultipleObjects(t *testing.T) {
	if _, ok := Recover(`{"a": 1} {"b": 2}`); ok {
		t.Fatalf("expected no recovery for two top-level objects")
	}
}

func TestRecover_RoundTrips(t *testing.T) {
	in := "```json\n{\"steps\": [\"A -> B\"], \"n\": 2.5}\n```"
	v, ok := Recover(in)
	if !ok {
		t.Fatalf("expected recovery")
	}
	b, err := MarshalCanonical(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	v2, ok := Recover(string(b))
	if !ok || !reflect.DeepEqual(v, v2) {
		t.Fatalf("round trip mismatch: %#v vs %#v", v, v2)
	}
}

func TestRecoverObject_RejectsNonObject(t *testing.T) {
	if _, ok := RecoverObject(`[1, 2, 3]`); ok {
		t.Fatalf("expected object rejection")
	}
	obj, ok := RecoverObject(`{"k": "v"}`)
	if !ok || obj["k"] != "v" {
		t.Fatalf("got %#v", obj)
	}
}

func TestStripFences_LanguageTag(t *testing.T) {
	got := StripFences("```json\n{\"a\":1}\n```")
	if got != "{\"a\":1}" {
		t.Fatalf("got %q", got)
	}
}
