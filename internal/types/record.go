// Package types provides the structured records exchanged between the model,
// the store and the API.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SchemaID names one of the closed set of extraction schemas.
type SchemaID string

// Schema identifiers.
const (
	SchemaJobParse         SchemaID = "job_parse"
	SchemaCandidateParse   SchemaID = "candidate_parse"
	SchemaEvaluation       SchemaID = "evaluation"
	SchemaScreeningSummary SchemaID = "screening_summary"
	SchemaOutreachMessage  SchemaID = "outreach_message"
)

// AllSchemaIDs returns every schema identifier in a stable order.
func AllSchemaIDs() []SchemaID {
	return []SchemaID{
		SchemaJobParse,
		SchemaCandidateParse,
		SchemaEvaluation,
		SchemaScreeningSummary,
		SchemaOutreachMessage,
	}
}

// Record is implemented by exactly the five extraction record types.
type Record interface {
	SchemaID() SchemaID
	// normalize replaces absent lists and maps with empty ones.
	normalize()
}

// Normalize fills absent collections on r so they encode as [] or {}.
func Normalize(r Record) {
	if r != nil {
		r.normalize()
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
