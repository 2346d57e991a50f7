package ai

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when a feature's backing client was not configured.
var ErrUnavailable = errors.New("AI features are not configured")

// ProviderError indicates the LLM provider call itself failed.
type ProviderError struct {
	Operation string
	Model     string
	Cause     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: model %s request failed: %v", e.Operation, e.Model, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// OutputError indicates the model replied, but never with JSON that matched
// the expected shape.
type OutputError struct {
	Operation string
	Attempts  int
	Cause     error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("%s: unusable model output after %d attempt(s): %v", e.Operation, e.Attempts, e.Cause)
}

func (e *OutputError) Unwrap() error {
	return e.Cause
}
