package llm

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// UnavailableError is returned when no model can be reached: missing
// credentials, a client that could not be constructed, or a transport failure.
type UnavailableError struct {
	Provider Provider
	Message  string
	Cause    error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model unavailable (%s): %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("model unavailable (%s): %s", e.Provider, e.Message)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// IsUnavailable reports whether err is or wraps an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// classifyCallError leaves context errors untouched so callers can tell a
// deadline from a transport failure, and marks everything else unavailable.
func classifyCallError(provider Provider, model string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return &UnavailableError{
		Provider: provider,
		Message:  fmt.Sprintf("generate content with %s", model),
		Cause:    err,
	}
}
