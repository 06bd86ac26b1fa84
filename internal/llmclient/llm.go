package llmclient

import (
	"context"
	"errors"
)

var (
	// ErrEmptyResponse is returned when the model call succeeds but carries
	// no text. Callers treat it like any other failed attempt.
	ErrEmptyResponse = errors.New("empty response from model")
)

// LLMClient is the text-generation collaborator. Implementations wrap one
// provider; cross-cutting concerns (rate limiting, logging) are applied via
// llm.Middleware.
type LLMClient interface {
	Name() string
	Close() error
	// GenerateText sends prompt and returns the raw model text verbatim.
	// Nothing about the shape of the returned string is guaranteed.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}
