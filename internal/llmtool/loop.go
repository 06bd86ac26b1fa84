// Package llmtool turns a free-form text generator into a structured JSON
// generator: it prompts, recovers JSON from whatever came back, and retries
// a bounded number of times before giving up with a sentinel value.
package llmtool

import (
	"context"
	"errors"
	"time"

	"archflow/internal/jsonrepair"
	"archflow/internal/llmclient"
)

// ErrGenerationInvalidOutput is the error code carried by a FailureSentinel
// when every attempt failed to produce parseable JSON.
const ErrGenerationInvalidOutput = "GENERATION_INVALID_OUTPUT"

// rawOutputLimit caps the diagnostic text carried by a sentinel.
const rawOutputLimit = 500

// FailureSentinel is the terminal failure record of a structured generation.
// It is returned as data, never as an error; callers must branch on it.
type FailureSentinel struct {
	Error     string `json:"error"`
	RawOutput string `json:"raw_output"`
}

// StructuredLoop drives generate-then-recover attempts against one client.
// Attempts are strictly sequential; the loop makes MaxRetries+1 of them.
type StructuredLoop struct {
	LLM        llmclient.LLMClient
	MaxRetries int
	// Delay separates attempts. It is a politeness measure toward the
	// provider, not a correctness property. Zero means the default.
	Delay time.Duration
}

const defaultAttemptDelay = 300 * time.Millisecond

// Generate prompts the client and recovers a JSON value from its output.
// The first successful recovery wins. When the retry budget is exhausted the
// sentinel carries the first 500 characters of the last raw output (or the
// last error text when the client never produced any).
func (l *StructuredLoop) Generate(ctx context.Context, prompt string) (any, *FailureSentinel) {
	retries := l.MaxRetries
	if retries < 0 {
		retries = 0
	}
	delay := l.Delay
	if delay <= 0 {
		delay = defaultAttemptDelay
	}

	var lastRaw string
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, l.sentinel(lastRaw)
			case <-time.After(delay):
			}
		}

		text, err := l.LLM.GenerateText(ctx, prompt)
		if err != nil {
			if lastRaw == "" {
				lastRaw = err.Error()
			}
			var pErr *llmclient.PermanentError
			if errors.As(err, &pErr) {
				return nil, l.sentinel(lastRaw)
			}
			continue
		}
		if text == "" {
			continue
		}
		lastRaw = text

		if v, ok := jsonrepair.Recover(text); ok {
			return v, nil
		}
	}
	return nil, l.sentinel(lastRaw)
}

func (l *StructuredLoop) sentinel(raw string) *FailureSentinel {
	return &FailureSentinel{
		Error:     ErrGenerationInvalidOutput,
		RawOutput: truncate(raw, rawOutputLimit),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
