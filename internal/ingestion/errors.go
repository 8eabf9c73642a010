package ingestion

import "fmt"

// DecodeError is returned when a document cannot be turned into text.
type DecodeError struct {
	FileName string
	Format   Format
	Message  string
	Cause    error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode %s (%s): %s: %v", e.FileName, e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("decode %s (%s): %s", e.FileName, e.Format, e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
