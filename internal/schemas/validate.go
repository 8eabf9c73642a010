// Package schemas provides the registry of extraction schemas: their
// documents for prompting and a validator that turns raw model output into
// typed records.
package schemas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"

	schemadocs "github.com/jonathan/ats-assistant/schemas"
	"github.com/jonathan/ats-assistant/internal/types"
)

// SchemaID re-exports types.SchemaID for callers that only deal with schemas.
type SchemaID = types.SchemaID

// Record re-exports types.Record.
type Record = types.Record

// Schema identifiers.
const (
	JobParse         = types.SchemaJobParse
	CandidateParse   = types.SchemaCandidateParse
	Evaluation       = types.SchemaEvaluation
	ScreeningSummary = types.SchemaScreeningSummary
	OutreachMessage  = types.SchemaOutreachMessage
)

// ParseSchemaID maps a schema name to its identifier.
func ParseSchemaID(s string) (SchemaID, error) {
	for _, id := range types.AllSchemaIDs() {
		if string(id) == s {
			return id, nil
		}
	}
	return "", &UnknownSchemaError{ID: SchemaID(s)}
}

type compiledSchema struct {
	doc    string
	schema *gojsonschema.Schema
}

// Registry holds the compiled schema for every record type. It is read-only
// after construction and safe for concurrent use.
type Registry struct {
	schemas  map[SchemaID]compiledSchema
	validate *validator.Validate
}

// NewRegistry compiles every embedded schema document.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		schemas:  make(map[SchemaID]compiledSchema, len(types.AllSchemaIDs())),
		validate: newStructValidator(),
	}

	for _, id := range types.AllSchemaIDs() {
		path := schemadocs.FileName(string(id))
		raw, err := schemadocs.FS.ReadFile(path)
		if err != nil {
			return nil, &SchemaLoadError{Path: path, Message: "read embedded document", Cause: err}
		}

		compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, &SchemaLoadError{Path: path, Message: "compile", Cause: err}
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			return nil, &SchemaLoadError{Path: path, Message: "indent", Cause: err}
		}

		r.schemas[id] = compiledSchema{doc: pretty.String(), schema: compiled}
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for package-level initialization.
func MustNewRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// Describe returns the schema document text embedded in model instructions.
func (r *Registry) Describe(id SchemaID) (string, error) {
	cs, ok := r.schemas[id]
	if !ok {
		return "", &UnknownSchemaError{ID: id}
	}
	return cs.doc, nil
}

// Validate checks raw model output against the schema for id and returns the
// typed record. Any failure is a *ValidationError listing every offending field.
func (r *Registry) Validate(id SchemaID, raw []byte) (Record, error) {
	cs, ok := r.schemas[id]
	if !ok {
		return nil, &UnknownSchemaError{ID: id}
	}

	if !json.Valid(raw) {
		var probe any
		err := json.Unmarshal(raw, &probe)
		msg := "not a JSON document"
		if err != nil {
			msg = fmt.Sprintf("invalid JSON: %v", err)
		}
		return nil, &ValidationError{Schema: id, Errors: []FieldError{{Field: "(root)", Message: msg}}}
	}

	result, err := cs.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &ValidationError{Schema: id, Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	if !result.Valid() {
		return nil, &ValidationError{Schema: id, Errors: fieldErrorsFromResult(result)}
	}

	rec := newRecord(id)
	if err := decodeRecord(raw, rec); err != nil {
		return nil, &ValidationError{Schema: id, Errors: []FieldError{decodeFieldError(err)}}
	}
	types.Normalize(rec)

	var fieldErrs []FieldError
	if err := r.validate.Struct(rec); err != nil {
		fieldErrs = append(fieldErrs, fieldErrorsFromValidator(err)...)
	}
	fieldErrs = append(fieldErrs, crossFieldErrors(rec)...)
	if len(fieldErrs) > 0 {
		return nil, &ValidationError{Schema: id, Errors: fieldErrs}
	}

	return rec, nil
}

// ValidateValue re-validates an already decoded record or map.
func (r *Registry) ValidateValue(id SchemaID, v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &ValidationError{Schema: id, Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	return r.Validate(id, raw)
}

// As narrows a record to its concrete type, e.g. As[*types.JobParse](rec).
func As[T Record](rec Record) (T, bool) {
	t, ok := rec.(T)
	return t, ok
}

func newRecord(id SchemaID) Record {
	switch id {
	case JobParse:
		return &types.JobParse{}
	case CandidateParse:
		return &types.CandidateParse{}
	case Evaluation:
		return &types.EvaluationResult{}
	case ScreeningSummary:
		return &types.ScreeningResult{}
	case OutreachMessage:
		return &types.OutreachMessage{}
	default:
		panic(fmt.Sprintf("schemas: no record type for %q", id))
	}
}

func crossFieldErrors(rec Record) []FieldError {
	job, ok := rec.(*types.JobParse)
	if !ok || job.CompRangeMin == nil || job.CompRangeMax == nil {
		return nil
	}
	if *job.CompRangeMin > *job.CompRangeMax {
		return []FieldError{{
			Field:   "comp_range_min",
			Message: fmt.Sprintf("comp_range_min (%g) must not exceed comp_range_max (%g)", *job.CompRangeMin, *job.CompRangeMax),
		}}
	}
	return nil
}

// decodeRecord unmarshals raw into rec. JSON Schema counts 72.0 and 1e2 as
// integers, so whole numbers in any notation are rewritten as integer
// literals first.
func decodeRecord(raw []byte, rec Record) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	normalized, err := json.Marshal(integralNumbers(doc))
	if err != nil {
		return err
	}
	return json.Unmarshal(normalized, rec)
}

// maxExactInt is the largest magnitude a float64 holds without rounding.
const maxExactInt = 1 << 53

func integralNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = integralNumbers(e)
		}
	case []any:
		for i, e := range t {
			t[i] = integralNumbers(e)
		}
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return t
		}
		f, err := t.Float64()
		if err == nil && f == math.Trunc(f) && math.Abs(f) <= maxExactInt {
			return json.Number(strconv.FormatInt(int64(f), 10))
		}
	}
	return v
}

// decodeFieldError names the field a typed decode failed on.
func decodeFieldError(err error) FieldError {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return FieldError{Field: te.Field, Message: fmt.Sprintf("expected %s, got %s", te.Type, te.Value)}
	}
	return FieldError{Field: "(root)", Message: err.Error()}
}

func fieldErrorsFromResult(result *gojsonschema.Result) []FieldError {
	errs := make([]FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				if field == "(root)" || field == "" {
					field = prop
				} else {
					field = field + "." + prop
				}
			}
		}
		if field == "" {
			field = "(root)"
		}
		errs = append(errs, FieldError{Field: field, Message: desc.Description()})
	}
	return errs
}

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldErrorsFromValidator(err error) []FieldError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "(root)", Message: err.Error()}}
	}

	errs := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		// Drop the top-level struct name
		if idx := strings.Index(field, "."); idx >= 0 {
			field = field[idx+1:]
		}
		msg := fmt.Sprintf("failed %q", fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("failed %q (%s)", fe.Tag(), fe.Param())
		}
		errs = append(errs, FieldError{Field: field, Message: msg})
	}
	return errs
}
