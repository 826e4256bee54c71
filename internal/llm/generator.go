package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTimeout means the generation call exceeded its budget and was
	// abandoned. No retry happens at this layer; the pipeline decides what
	// to do with the failure.
	ErrTimeout = errors.New("generation timed out")

	// ErrMalformedResponse means the service answered but the payload held
	// no usable text.
	ErrMalformedResponse = errors.New("malformed generation response")
)

// HTTPError is a transport-level failure the client recovered into a
// structured error instead of surfacing raw HTTP details.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("generation request failed with status %d: %s", e.Status, e.Message)
}

// Generator sends a fully-assembled prompt to an LLM service and returns the
// generated text. Implementations enforce the configured timeout and never
// return empty text with a nil error.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
