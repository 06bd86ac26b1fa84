package llm

import (
	"bytes"
	"context"
	"log"
	"testing"
	"time"
)

type echoClient struct {
	calls int
}

func (e *echoClient) Name() string { return "echo" }
func (e *echoClient) Close() error { return nil }
func (e *echoClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	e.calls++
	return prompt, nil
}

func TestWrap_Order(t *testing.T) {
	inner := &echoClient{}
	wrapped := Wrap(inner, WithLogging(log.New(bytes.NewBuffer(nil), "", 0)), RateLimit(0, 0))
	out, err := wrapped.GenerateText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "hello" || inner.calls != 1 {
		t.Fatalf("out=%q calls=%d", out, inner.calls)
	}
}

func TestWithLogging_TagsOperation(t *testing.T) {
	var buf bytes.Buffer
	wrapped := Wrap(&echoClient{}, WithLogging(log.New(&buf, "", 0)))
	ctx := WithOperation(context.Background(), "generate_system")
	if _, err := wrapped.GenerateText(ctx, "p"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := buf.String(); !bytes.Contains([]byte(got), []byte("generate_system")) {
		t.Fatalf("log line missing operation: %q", got)
	}
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	inner := &echoClient{}
	wrapped := RateLimit(0, 1)(inner)
	for i := 0; i < 5; i++ {
		if _, err := wrapped.GenerateText(context.Background(), "p"); err != nil {
			t.Fatalf("generate: %v", err)
		}
	}
	if inner.calls != 5 {
		t.Fatalf("calls=%d", inner.calls)
	}
}

func TestRateLimit_CanceledContext(t *testing.T) {
	inner := &echoClient{}
	wrapped := RateLimit(0.001, 1)(inner)
	// First call consumes the burst token.
	if _, err := wrapped.GenerateText(context.Background(), "p"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := wrapped.GenerateText(ctx, "p"); err == nil {
		t.Fatalf("expected context error while throttled")
	}
	if inner.calls != 1 {
		t.Fatalf("calls=%d", inner.calls)
	}
}

func TestOperationFrom_Default(t *testing.T) {
	if got := OperationFrom(context.Background()); got != "unknown" {
		t.Fatalf("got %q", got)
	}
}
