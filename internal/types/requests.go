package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// Tone names understood by the outreach prompt. Other values pass through verbatim.
const (
	ToneFriendly = "friendly"
	ToneFormal   = "formal"
	ToneConcise  = "concise"
)

// OutreachRequest describes a message to draft for a candidate.
type OutreachRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	JobTitle    string `json:"job_title" validate:"required"`
	CompanyName string `json:"company_name,omitempty"`
	Tone        string `json:"tone,omitempty"`
}

// Validate validates the OutreachRequest using the validator.
func (r *OutreachRequest) Validate() error {
	return validate.Struct(r)
}

// TextRequest carries raw text for a parse or summarize call.
type TextRequest struct {
	Text string `json:"text,omitempty" validate:"required_without=URL"`
	URL  string `json:"url,omitempty" validate:"omitempty,url"`
}

// Validate validates the TextRequest using the validator.
func (r *TextRequest) Validate() error {
	return validate.Struct(r)
}

// EvaluateRequest asks for a candidate evaluation against a job.
type EvaluateRequest struct {
	Job        *JobParse       `json:"job" validate:"required"`
	Candidate  *CandidateParse `json:"candidate" validate:"required"`
	ResumeText string          `json:"resume_text" validate:"required"`
}

// Validate validates the EvaluateRequest using the validator.
func (r *EvaluateRequest) Validate() error {
	return validate.Struct(r)
}

// StageUpdateRequest moves an application to a new stage.
type StageUpdateRequest struct {
	Stage Stage `json:"stage" validate:"required,oneof=new screened interview offer hired rejected"`
}

// Validate validates the StageUpdateRequest using the validator.
func (r *StageUpdateRequest) Validate() error {
	return validate.Struct(r)
}

// NoteRequest adds a note to an application.
type NoteRequest struct {
	Content string `json:"content" validate:"required"`
}

// Validate validates the NoteRequest using the validator.
func (r *NoteRequest) Validate() error {
	return validate.Struct(r)
}

// RoleUpdateRequest changes a user's role.
type RoleUpdateRequest struct {
	Role Role `json:"role" validate:"required,oneof=admin recruiter manager candidate"`
}

// Validate validates the RoleUpdateRequest using the validator.
func (r *RoleUpdateRequest) Validate() error {
	return validate.Struct(r)
}

// ApplyRequest is a candidate applying to a job.
type ApplyRequest struct {
	JobID uuid.UUID `json:"job_id" validate:"required"`
}

// Validate validates the ApplyRequest using the validator.
func (r *ApplyRequest) Validate() error {
	return validate.Struct(r)
}

// ScreeningRequest carries a screening transcript or interviewer notes.
type ScreeningRequest struct {
	Transcript string `json:"transcript" validate:"required"`
}

// Validate validates the ScreeningRequest using the validator.
func (r *ScreeningRequest) Validate() error {
	return validate.Struct(r)
}
