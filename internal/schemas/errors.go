package schemas

import (
	"fmt"
	"strings"

	"github.com/jonathan/ats-assistant/internal/types"
)

// ValidationError reports every way a document failed its schema.
type ValidationError struct {
	Schema types.SchemaID
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s validation failed:\n", ve.Schema))
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// HasField reports whether any error names field.
func (ve *ValidationError) HasField(field string) bool {
	for _, fe := range ve.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// SchemaLoadError represents errors loading or compiling a schema document
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// UnknownSchemaError is returned for an identifier outside the closed set.
type UnknownSchemaError struct {
	ID types.SchemaID
}

func (e *UnknownSchemaError) Error() string {
	return fmt.Sprintf("unknown schema %q", e.ID)
}
