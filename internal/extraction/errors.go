package extraction

import (
	"fmt"
	"time"

	"github.com/jonathan/ats-assistant/internal/types"
)

// Error is returned when every attempt at an extraction failed.
type Error struct {
	Schema   types.SchemaID
	Attempts int
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: failed after %d attempt(s): %v", e.Schema, e.Attempts, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// TimeoutError marks a single attempt that ran past its deadline.
type TimeoutError struct {
	Timeout time.Duration
	Cause   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("model call exceeded %s: %v", e.Timeout, e.Cause)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// InputError reports caller input that cannot be sent to the model.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Message)
}
