package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/ats-assistant/internal/db"
	"github.com/jonathan/ats-assistant/internal/types"
)

// Store is the persistence the API uses. *db.DB implements it.
type Store interface {
	Ping(ctx context.Context) error

	GetUserRole(ctx context.Context, userID uuid.UUID) (types.Role, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*db.Profile, error)
	UpdateUserRole(ctx context.Context, userID uuid.UUID, role types.Role) (bool, error)
	ListUsers(ctx context.Context) ([]db.Profile, error)

	CreateJob(ctx context.Context, in db.JobCreateInput) (*db.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*db.Job, error)
	ListJobs(ctx context.Context, status types.JobStatus) ([]db.Job, error)

	CreateCandidate(ctx context.Context, in db.CandidateInput) (*db.Candidate, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (*db.Candidate, error)
	GetCandidateByUser(ctx context.Context, userID uuid.UUID) (*db.Candidate, error)
	UpdateCandidate(ctx context.Context, id uuid.UUID, in db.CandidateInput) (*db.Candidate, error)

	CreateApplication(ctx context.Context, jobID, candidateID uuid.UUID) (*db.Application, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*db.Application, error)
	ListApplicationsForJob(ctx context.Context, jobID uuid.UUID) ([]db.ApplicationRow, error)
	ListApplicationsForCandidate(ctx context.Context, candidateID uuid.UUID) ([]db.CandidateApplication, error)
	GetApplicationDetails(ctx context.Context, id uuid.UUID) (*db.ApplicationDetails, error)
	UpdateApplicationStage(ctx context.Context, id uuid.UUID, stage types.Stage) (bool, error)
	UpdateApplicationEvaluation(ctx context.Context, id uuid.UUID, res *types.EvaluationResult) (bool, error)
	ApplyScreening(ctx context.Context, id uuid.UUID, res *types.ScreeningResult) (bool, error)

	AddNote(ctx context.Context, applicationID uuid.UUID, authorID *uuid.UUID, text string) (*db.Note, error)
	ListNotes(ctx context.Context, applicationID uuid.UUID) ([]db.Note, error)

	RecordAudit(ctx context.Context, actorID *uuid.UUID, action, entityType string, entityID *uuid.UUID, details map[string]any) error
	ListAuditLog(ctx context.Context, limit int) ([]db.AuditEntry, error)

	DashboardStats(ctx context.Context) (*db.DashboardStats, error)
}

var _ Store = (*db.DB)(nil)
