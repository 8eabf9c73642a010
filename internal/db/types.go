package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/ats-assistant/internal/types"
)

// Profile is an authenticated user and their role.
type Profile struct {
	ID        uuid.UUID  `json:"id"`
	FullName  string     `json:"full_name"`
	Email     *string    `json:"email,omitempty"`
	Role      types.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// Job is a posted role.
type Job struct {
	ID        uuid.UUID       `json:"id"`
	CreatedBy *uuid.UUID      `json:"created_by,omitempty"`
	JDText    string          `json:"jd_text"`
	Status    types.JobStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	types.JobParse
}

// JobCreateInput holds the fields for a new job.
type JobCreateInput struct {
	Parsed    types.JobParse
	JDText    string
	CreatedBy *uuid.UUID
	Status    types.JobStatus // defaults to open
}

// Candidate is a person with a parsed résumé.
type Candidate struct {
	ID             uuid.UUID  `json:"id"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	ResumeText     string     `json:"resume_text"`
	ResumeFilePath *string    `json:"resume_file_path,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	types.CandidateParse
}

// CandidateInput holds the fields for creating or updating a candidate.
type CandidateInput struct {
	Parsed         types.CandidateParse
	ResumeText     string
	ResumeFilePath *string
	UserID         *uuid.UUID
}

// Application links a candidate to a job and carries its evaluation.
type Application struct {
	ID                          uuid.UUID             `json:"id"`
	JobID                       uuid.UUID             `json:"job_id"`
	CandidateID                 uuid.UUID             `json:"candidate_id"`
	Stage                       types.Stage           `json:"stage"`
	OverallScore                *int                  `json:"overall_score,omitempty"`
	ScoreBreakdown              *types.ScoreBreakdown `json:"score_breakdown,omitempty"`
	AISummary                   *string               `json:"ai_summary,omitempty"`
	Strengths                   []string              `json:"strengths"`
	Concerns                    []string              `json:"concerns"`
	MissingMustHaves            []string              `json:"missing_must_haves"`
	RiskFlags                   []string              `json:"risk_flags"`
	SuggestedInterviewQuestions []string              `json:"suggested_interview_questions"`
	ScreeningSummary            *string               `json:"screening_summary,omitempty"`
	RubricNotes                 *string               `json:"rubric_notes,omitempty"`
	CreatedAt                   time.Time             `json:"created_at"`
	UpdatedAt                   time.Time             `json:"updated_at"`
}

// Evaluated reports whether the application has an overall score.
func (a *Application) Evaluated() bool {
	return a.OverallScore != nil
}

// ApplicationRow is an application with the candidate's contact details,
// as listed for a job.
type ApplicationRow struct {
	Application
	CandidateName  string  `json:"candidate_name"`
	CandidateEmail *string `json:"candidate_email,omitempty"`
}

// CandidateApplication is an application as seen by the candidate.
type CandidateApplication struct {
	Application
	JobTitle    string          `json:"job_title"`
	JobLocation *string         `json:"job_location,omitempty"`
	JobStatus   types.JobStatus `json:"job_status"`
}

// ApplicationDetails is an application joined with its job and candidate.
type ApplicationDetails struct {
	Application Application `json:"application"`
	Job         Job         `json:"job"`
	Candidate   Candidate   `json:"candidate"`
}

// Note is a recruiter comment on an application.
type Note struct {
	ID            uuid.UUID  `json:"id"`
	ApplicationID uuid.UUID  `json:"application_id"`
	AuthorID      *uuid.UUID `json:"author_id,omitempty"`
	AuthorName    *string    `json:"author_name,omitempty"`
	Note          string     `json:"note"`
	CreatedAt     time.Time  `json:"created_at"`
}

// AuditEntry records an action taken by a user.
type AuditEntry struct {
	ID         uuid.UUID      `json:"id"`
	ActorID    *uuid.UUID     `json:"actor_id,omitempty"`
	ActorName  *string        `json:"actor_name,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *uuid.UUID     `json:"entity_id,omitempty"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}

// RecentApplication is one line of dashboard activity.
type RecentApplication struct {
	ApplicationID uuid.UUID   `json:"application_id"`
	CandidateName string      `json:"candidate_name"`
	JobTitle      string      `json:"job_title"`
	Stage         types.Stage `json:"stage"`
	CreatedAt     time.Time   `json:"created_at"`
}

// DashboardStats summarizes jobs and the hiring funnel.
type DashboardStats struct {
	TotalJobs         int                 `json:"total_jobs"`
	OpenJobs          int                 `json:"open_jobs"`
	TotalApplications int                 `json:"total_applications"`
	Funnel            map[types.Stage]int `json:"funnel"`
	RecentActivity    []RecentApplication `json:"recent_activity"`
}

// RecentActivityLimit is how many applications DashboardStats returns.
const RecentActivityLimit = 5

// EmptyFunnel returns a funnel with every stage at zero.
func EmptyFunnel() map[types.Stage]int {
	funnel := make(map[types.Stage]int, len(types.AllStages()))
	for _, s := range types.AllStages() {
		funnel[s] = 0
	}
	return funnel
}
