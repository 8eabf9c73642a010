package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/ats-assistant/internal/db"
	"github.com/jonathan/ats-assistant/internal/types"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu           sync.Mutex
	roles        map[uuid.UUID]types.Role
	jobs         map[uuid.UUID]*db.Job
	candidates   map[uuid.UUID]*db.Candidate
	applications map[uuid.UUID]*db.Application
	notes        []db.Note
	audit        []db.AuditEntry

	PingFunc func(ctx context.Context) error
}

func newMemStore() *memStore {
	return &memStore{
		roles:        map[uuid.UUID]types.Role{},
		jobs:         map[uuid.UUID]*db.Job{},
		candidates:   map[uuid.UUID]*db.Candidate{},
		applications: map[uuid.UUID]*db.Application{},
	}
}

func (m *memStore) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *memStore) GetUserRole(_ context.Context, userID uuid.UUID) (types.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.roles[userID]
	if !ok {
		role = types.RoleRecruiter
		m.roles[userID] = role
	}
	return role, nil
}

func (m *memStore) setRole(userID uuid.UUID, role types.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = role
}

func (m *memStore) GetProfile(_ context.Context, userID uuid.UUID) (*db.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.roles[userID]
	if !ok {
		return nil, nil
	}
	return &db.Profile{ID: userID, Role: role}, nil
}

func (m *memStore) UpdateUserRole(_ context.Context, userID uuid.UUID, role types.Role) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[userID]; !ok {
		return false, nil
	}
	m.roles[userID] = role
	return true, nil
}

func (m *memStore) ListUsers(context.Context) ([]db.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]db.Profile, 0, len(m.roles))
	for id, role := range m.roles {
		users = append(users, db.Profile{ID: id, Role: role})
	}
	return users, nil
}

func (m *memStore) CreateJob(_ context.Context, in db.JobCreateInput) (*db.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := in.Status
	if status == "" {
		status = types.JobOpen
	}
	job := &db.Job{ID: uuid.New(), CreatedBy: in.CreatedBy, JDText: in.JDText, Status: status, CreatedAt: time.Now(), JobParse: in.Parsed}
	m.jobs[job.ID] = job
	return job, nil
}

func (m *memStore) GetJob(_ context.Context, id uuid.UUID) (*db.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id], nil
}

func (m *memStore) ListJobs(_ context.Context, status types.JobStatus) ([]db.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := []db.Job{}
	for _, j := range m.jobs {
		if status == "" || j.Status == status {
			jobs = append(jobs, *j)
		}
	}
	return jobs, nil
}

func (m *memStore) CreateCandidate(_ context.Context, in db.CandidateInput) (*db.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &db.Candidate{ID: uuid.New(), UserID: in.UserID, ResumeText: in.ResumeText, ResumeFilePath: in.ResumeFilePath, CandidateParse: in.Parsed}
	m.candidates[c.ID] = c
	return c, nil
}

func (m *memStore) GetCandidate(_ context.Context, id uuid.UUID) (*db.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.candidates[id], nil
}

func (m *memStore) GetCandidateByUser(_ context.Context, userID uuid.UUID) (*db.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.candidates {
		if c.UserID != nil && *c.UserID == userID {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateCandidate(_ context.Context, id uuid.UUID, in db.CandidateInput) (*db.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[id]
	if !ok {
		return nil, nil
	}
	c.CandidateParse = in.Parsed
	c.ResumeText = in.ResumeText
	if in.ResumeFilePath != nil {
		c.ResumeFilePath = in.ResumeFilePath
	}
	return c, nil
}

func (m *memStore) CreateApplication(_ context.Context, jobID, candidateID uuid.UUID) (*db.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.applications {
		if a.JobID == jobID && a.CandidateID == candidateID {
			return nil, &db.DuplicateRecordError{Entity: "application", Constraint: "applications_job_id_candidate_id_key"}
		}
	}
	a := &db.Application{ID: uuid.New(), JobID: jobID, CandidateID: candidateID, Stage: types.StageNew, CreatedAt: time.Now()}
	m.applications[a.ID] = a
	return a, nil
}

func (m *memStore) GetApplication(_ context.Context, id uuid.UUID) (*db.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applications[id], nil
}

func (m *memStore) ListApplicationsForJob(_ context.Context, jobID uuid.UUID) ([]db.ApplicationRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := []db.ApplicationRow{}
	for _, a := range m.applications {
		if a.JobID != jobID {
			continue
		}
		c := m.candidates[a.CandidateID]
		rows = append(rows, db.ApplicationRow{Application: *a, CandidateName: c.FullName, CandidateEmail: c.Email})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return rows, nil
}

func (m *memStore) ListApplicationsForCandidate(_ context.Context, candidateID uuid.UUID) ([]db.CandidateApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apps := []db.CandidateApplication{}
	for _, a := range m.applications {
		if a.CandidateID == candidateID {
			j := m.jobs[a.JobID]
			apps = append(apps, db.CandidateApplication{Application: *a, JobTitle: j.Title, JobStatus: j.Status})
		}
	}
	return apps, nil
}

func (m *memStore) GetApplicationDetails(_ context.Context, id uuid.UUID) (*db.ApplicationDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[id]
	if !ok {
		return nil, nil
	}
	return &db.ApplicationDetails{Application: *a, Job: *m.jobs[a.JobID], Candidate: *m.candidates[a.CandidateID]}, nil
}

func (m *memStore) UpdateApplicationStage(_ context.Context, id uuid.UUID, stage types.Stage) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[id]
	if ok {
		a.Stage = stage
	}
	return ok, nil
}

func (m *memStore) UpdateApplicationEvaluation(_ context.Context, id uuid.UUID, res *types.EvaluationResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[id]
	if ok {
		score := res.OverallScore
		breakdown := res.ScoreBreakdown
		a.OverallScore = &score
		a.ScoreBreakdown = &breakdown
		a.AISummary = &res.AISummary
		a.RiskFlags = res.RiskFlags
	}
	return ok, nil
}

func (m *memStore) ApplyScreening(_ context.Context, id uuid.UUID, res *types.ScreeningResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[id]
	if ok {
		a.ScreeningSummary = &res.Summary
		a.Stage = res.RecommendedStage
	}
	return ok, nil
}

func (m *memStore) AddNote(_ context.Context, applicationID uuid.UUID, authorID *uuid.UUID, text string) (*db.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := db.Note{ID: uuid.New(), ApplicationID: applicationID, AuthorID: authorID, Note: text, CreatedAt: time.Now()}
	m.notes = append(m.notes, n)
	return &n, nil
}

func (m *memStore) ListNotes(_ context.Context, applicationID uuid.UUID) ([]db.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	notes := []db.Note{}
	for _, n := range m.notes {
		if n.ApplicationID == applicationID {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

func (m *memStore) RecordAudit(_ context.Context, actorID *uuid.UUID, action, entityType string, entityID *uuid.UUID, details map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, db.AuditEntry{ID: uuid.New(), ActorID: actorID, Action: action, EntityType: entityType, EntityID: entityID, Details: details})
	return nil
}

func (m *memStore) ListAuditLog(_ context.Context, limit int) ([]db.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := append([]db.AuditEntry(nil), m.audit...)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *memStore) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.audit))
	for _, e := range m.audit {
		out = append(out, e.Action)
	}
	return out
}

func (m *memStore) DashboardStats(context.Context) (*db.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &db.DashboardStats{TotalJobs: len(m.jobs), TotalApplications: len(m.applications), Funnel: db.EmptyFunnel(), RecentActivity: []db.RecentApplication{}}
	for _, j := range m.jobs {
		if j.Status == types.JobOpen {
			stats.OpenJobs++
		}
	}
	for _, a := range m.applications {
		stats.Funnel[a.Stage]++
	}
	return stats, nil
}

var _ Store = (*memStore)(nil)
