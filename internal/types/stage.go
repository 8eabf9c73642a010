package types

import "fmt"

// Stage is a position in the hiring funnel.
type Stage string

// Funnel stages. Rejected can be reached from any other stage.
const (
	StageNew       Stage = "new"
	StageScreened  Stage = "screened"
	StageInterview Stage = "interview"
	StageOffer     Stage = "offer"
	StageHired     Stage = "hired"
	StageRejected  Stage = "rejected"
)

// AllStages returns the funnel in order, rejected last.
func AllStages() []Stage {
	return []Stage{StageNew, StageScreened, StageInterview, StageOffer, StageHired, StageRejected}
}

// ParseStage validates a stage name.
func ParseStage(s string) (Stage, error) {
	for _, st := range AllStages() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// Role is a user's permission level.
type Role string

// Roles.
const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
	RoleManager   Role = "manager"
	RoleCandidate Role = "candidate"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleRecruiter, RoleManager, RoleCandidate:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// IsStaff reports whether the role may use recruiter tooling.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleRecruiter || r == RoleManager
}

// JobStatus is the publication state of a job.
type JobStatus string

// Job statuses.
const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
	JobDraft  JobStatus = "draft"
)
