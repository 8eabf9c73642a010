package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/jonathan/ats-assistant/internal/db"
	"github.com/jonathan/ats-assistant/internal/extraction"
	"github.com/jonathan/ats-assistant/internal/fetch"
	"github.com/jonathan/ats-assistant/internal/ingestion"
	"github.com/jonathan/ats-assistant/internal/llm"
	"github.com/jonathan/ats-assistant/internal/schemas"
	"github.com/jonathan/ats-assistant/internal/storage"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a missing entity.
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

var validate = validator.New()

// errNoStore is returned by routes that need a database when none is configured.
var errNoStore = errors.New("database is not configured")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		dup         *db.DuplicateRecordError
		unavailable *llm.UnavailableError
		decodeErr   *ingestion.DecodeError
		inputErr    *extraction.InputError
		reqErr      *ErrValidation
		fieldErrs   validator.ValidationErrors
		schemaErr   *schemas.ValidationError
		extractErr  *extraction.Error
		fetchErr    *fetch.Error
		notFound    *ErrNotFound
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &dup):
		return http.StatusConflict
	case errors.As(err, &unavailable), errors.Is(err, errNoStore):
		return http.StatusServiceUnavailable
	case errors.As(err, &decodeErr), errors.As(err, &inputErr), errors.As(err, &reqErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.As(err, &schemaErr), errors.As(err, &extractErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &notFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON written for a failed request.
func errorBody(err error, status int) map[string]any {
	switch {
	case status == http.StatusConflict:
		return map[string]any{"warning": err.Error()}
	case status == http.StatusInternalServerError:
		return map[string]any{"error": "internal error"}
	}

	body := map[string]any{"error": err.Error()}
	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		body["fields"] = schemaErr.Errors
	}
	var extractErr *extraction.Error
	if errors.As(err, &extractErr) {
		body["schema"] = extractErr.Schema
		body["attempts"] = extractErr.Attempts
	}
	return body
}
