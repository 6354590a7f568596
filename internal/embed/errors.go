package embed

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when Embed is called with zero texts.
	// A zero-length batch is never sent to the remote model.
	ErrEmptyInput = errors.New("embed: empty input batch")

	// ErrNoModel is returned when no embedding-capable model is
	// configured anywhere.
	ErrNoModel = errors.New("embed: no embedding model configured")

	// ErrInvalidResponse is returned when the provider response cannot
	// be parsed into vectors at all.
	ErrInvalidResponse = errors.New("embed: response could not be parsed into vectors")
)

// AdapterMissingError indicates the resolved model's provider API
// format has no registered adapter.
type AdapterMissingError struct {
	Format string
}

func (e *AdapterMissingError) Error() string {
	return fmt.Sprintf("embed: no adapter registered for provider format %q", e.Format)
}

// RequestBuildError indicates a well-formed request could not be
// constructed from the model configuration, for example a missing API
// key or endpoint.
type RequestBuildError struct {
	ModelID string
	Reason  string
}

func (e *RequestBuildError) Error() string {
	return fmt.Sprintf("embed: cannot build request for model %q: %s", e.ModelID, e.Reason)
}

// StatusError is a non-2xx provider response. The raw body is kept for
// diagnostics.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("embed: provider returned status %d: %s", e.Code, e.Body)
}

// CountMismatchError indicates the provider returned a different number
// of vectors than input texts. This is a hard contract violation.
type CountMismatchError struct {
	Expected int
	Actual   int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("embed: expected %d vectors, got %d", e.Expected, e.Actual)
}
