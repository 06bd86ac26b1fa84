package llmtool

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"archflow/internal/llmclient"
)

type fakeLLM struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeLLM) Name() string { return "fake" }
func (f *fakeLLM) Close() error { return nil }
func (f *fakeLLM) GenerateText(ctx context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var text string
	if i < len(f.responses) {
		text = f.responses[i]
	}
	return text, err
}

func newLoop(llm llmclient.LLMClient, retries int) *StructuredLoop {
	return &StructuredLoop{LLM: llm, MaxRetries: retries, Delay: time.Millisecond}
}

func TestGenerate_FirstAttemptWins(t *testing.T) {
	llm := &fakeLLM{responses: []string{`{"ok": true}`, `{"never": "reached"}`}}
	v, sentinel := newLoop(llm, 3).Generate(context.Background(), "p")
	if sentinel != nil {
		t.Fatalf("unexpected sentinel: %+v", sentinel)
	}
	obj, ok := v.(map[string]any)
	if !ok || obj["ok"] != true {
		t.Fatalf("got %#v", v)
	}
	if llm.calls != 1 {
		t.Fatalf("expected 1 call, got %d", llm.calls)
	}
}

func TestGenerate_RecoversOnRetry(t *testing.T) {
	llm := &fakeLLM{responses: []string{"definitely not json", "```json\n{\"a\": 1}\n```"}}
	v, sentinel := newLoop(llm, 1).Generate(context.Background(), "p")
	if sentinel != nil {
		t.Fatalf("unexpected sentinel: %+v", sentinel)
	}
	if obj := v.(map[string]any); obj["a"] != float64(1) {
		t.Fatalf("got %#v", v)
	}
	if llm.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", llm.calls)
	}
}

func TestGenerate_ExhaustedBudget(t *testing.T) {
	llm := &fakeLLM{responses: []string{"not json", "not json"}}
	v, sentinel := newLoop(llm, 1).Generate(context.Background(), "p")
	if v != nil {
		t.Fatalf("expected no value, got %#v", v)
	}
	if sentinel == nil {
		t.Fatalf("expected sentinel")
	}
	if sentinel.Error != ErrGenerationInvalidOutput {
		t.Fatalf("error code: %q", sentinel.Error)
	}
	if sentinel.RawOutput != "not json" {
		t.Fatalf("raw output: %q", sentinel.RawOutput)
	}
	if llm.calls != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", llm.calls)
	}
}

func TestGenerate_ErrorCountsAsAttempt(t *testing.T) {
	llm := &fakeLLM{
		errs:      []error{errors.New("provider down"), nil},
		responses: []string{"", `{"recovered": true}`},
	}
	v, sentinel := newLoop(llm, 1).Generate(context.Background(), "p")
	if sentinel != nil {
		t.Fatalf("unexpected sentinel: %+v", sentinel)
	}
	if obj := v.(map[string]any); obj["recovered"] != true {
		t.Fatalf("got %#v", v)
	}
}

func TestGenerate_PermanentErrorStops(t *testing.T) {
	llm := &fakeLLM{errs: []error{llmclient.NewPermanentError(errors.New("bad api key"))}}
	_, sentinel := newLoop(llm, 5).Generate(context.Background(), "p")
	if sentinel == nil {
		t.Fatalf("expected sentinel")
	}
	if llm.calls != 1 {
		t.Fatalf("expected no retries after permanent error, got %d calls", llm.calls)
	}
}

func TestGenerate_TruncatesRawOutput(t *testing.T) {
	long := strings.Repeat("x", 900)
	llm := &fakeLLM{responses: []string{long}}
	_, sentinel := newLoop(llm, 0).Generate(context.Background(), "p")
	if sentinel == nil {
		t.Fatalf("expected sentinel")
	}
	if len(sentinel.RawOutput) != 500 {
		t.Fatalf("raw output length: %d", len(sentinel.RawOutput))
	}
}

func TestGenerate_CanceledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	llm := &fakeLLM{responses: []string{"not json", "not json", "not json"}}
	_, sentinel := newLoop(llm, 2).Generate(ctx, "p")
	if sentinel == nil {
		t.Fatalf("expected sentinel")
	}
	if llm.calls != 1 {
		t.Fatalf("expected 1 attempt before cancellation took effect, got %d", llm.calls)
	}
}

func TestBuildPrompt_Sections(t *testing.T) {
	text, err := BuildPrompt(PromptSpec{
		Purpose:      "Do the thing.",
		Input:        map[string]any{"k": "v"},
		OutputSchema: `{"out": []}`,
		Rules:        []string{"extra rule"},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, want := range []string{"[RULES]", "[PURPOSE]", "[INPUT]", "[OUTPUT_SCHEMA]", "Respond with ONLY valid JSON", "extra rule"} {
		if !strings.Contains(text, want) {
			t.Fatalf("prompt missing %q:\n%s", want, text)
		}
	}
}

func TestBuildPrompt_EmptyPurpose(t *testing.T) {
	if _, err := BuildPrompt(PromptSpec{}); err == nil {
		t.Fatalf("expected error")
	}
}
