package llm

import (
	"context"
	"log"

	"archflow/internal/llmclient"
)

// WithLogging logs request size and errors. Provide a custom logger or nil
// to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next llmclient.LLMClient
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) GenerateText(ctx context.Context, prompt string) (string, error) {
	l.log.Printf("LLM request (%s): %d bytes", OperationFrom(ctx), len(prompt))
	text, err := l.next.GenerateText(ctx, prompt)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", OperationFrom(ctx), err)
	}
	return text, err
}

type ctxKeyOperation struct{}

// WithOperation attaches an operation name to the context for log lines.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, ctxKeyOperation{}, op)
}

// OperationFrom returns the operation stored in the context.
func OperationFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyOperation{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}
