package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/ats-assistant/internal/db"
	"github.com/jonathan/ats-assistant/internal/export"
	"github.com/jonathan/ats-assistant/internal/logging"
	"github.com/jonathan/ats-assistant/internal/server/middleware"
	"github.com/jonathan/ats-assistant/internal/types"
)

// CreateJobRequest posts a job from a description or a posting URL.
type CreateJobRequest struct {
	Text   string          `json:"text,omitempty" validate:"required_without=URL"`
	URL    string          `json:"url,omitempty" validate:"omitempty,url"`
	Status types.JobStatus `json:"status,omitempty" validate:"omitempty,oneof=open closed draft"`
}

// Validate validates the CreateJobRequest using the validator.
func (r *CreateJobRequest) Validate() error {
	return validate.Struct(r)
}

// OutreachOptions tunes an outreach draft for a stored application.
type OutreachOptions struct {
	CompanyName string `json:"company_name,omitempty"`
	Tone        string `json:"tone,omitempty"`
}

// Validate implements validatable.
func (*OutreachOptions) Validate() error { return nil }

// UploadResult is the outcome of adding a résumé to a job.
type UploadResult struct {
	Candidate   *db.Candidate           `json:"candidate"`
	Application *db.Application         `json:"application"`
	Evaluation  *types.EvaluationResult `json:"evaluation,omitempty"`
}

func pathID(r *http.Request, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "invalid " + entity + " ID"}
	}
	return id, nil
}

// actor returns the authenticated user, or nil.
func actor(r *http.Request) *uuid.UUID {
	id, err := middleware.GetUserID(r)
	if err != nil {
		return nil
	}
	return &id
}

// audit records an action. Failures are logged and never fail the request.
func (s *Server) audit(r *http.Request, action, entityType string, entityID uuid.UUID, details map[string]any) {
	if err := s.store.RecordAudit(r.Context(), actor(r), action, entityType, &entityID, details); err != nil {
		s.logger.Warnw("Failed to record audit entry", "action", action, logging.FieldError, err)
	}
}

func (s *Server) loadJob(ctx context.Context, id uuid.UUID) (*db.Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &ErrNotFound{Entity: "job", ID: id.String()}
	}
	return job, nil
}

func (s *Server) loadDetails(ctx context.Context, id uuid.UUID) (*db.ApplicationDetails, error) {
	details, err := s.store.GetApplicationDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, &ErrNotFound{Entity: "application", ID: id.String()}
	}
	return details, nil
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	text, err := s.jobText(r, req.Text, req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	parsed, err := withModel(s, r.Context(), func(ctx context.Context) (*types.JobParse, error) {
		return s.assistant.ParseJobDescription(ctx, text)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	job, err := s.store.CreateJob(r.Context(), db.JobCreateInput{
		Parsed:    *parsed,
		JDText:    text,
		CreatedBy: actor(r),
		Status:    req.Status,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.audit(r, db.ActionJobCreated, "job", job.ID, map[string]any{"title": job.Title})
	s.jsonResponse(w, http.StatusCreated, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	status := types.JobStatus(r.URL.Query().Get("status"))
	jobs, err := s.store.ListJobs(r.Context(), status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "job")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	job, err := s.loadJob(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleListJobApplications(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "job")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.loadJob(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.store.ListApplicationsForJob(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"applications": rows, "count": len(rows)})
}

// handleUploadApplication turns an uploaded résumé into a candidate and an
// application for the job. With form field evaluate=true the candidate is
// scored right away.
func (s *Server) handleUploadApplication(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "job")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	up, err := s.readUpload(w, r, "file")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	job, err := s.loadJob(r.Context(), jobID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cand, err := s.candidateFromUpload(r, up, nil, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	app, err := s.store.CreateApplication(r.Context(), job.ID, cand.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.audit(r, db.ActionApplicationCreated, "application", app.ID, map[string]any{"job_id": job.ID, "candidate_id": cand.ID})

	result := UploadResult{Candidate: cand, Application: app}
	if r.FormValue("evaluate") == "true" {
		res, err := s.evaluateAndStore(r, app.ID, &job.JobParse, cand)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		result.Evaluation = res
	}
	s.jsonResponse(w, http.StatusCreated, result)
}

// candidateFromUpload extracts and parses a résumé, stores the file when a
// blob store is configured, and creates or updates the candidate.
func (s *Server) candidateFromUpload(r *http.Request, up *upload, userID *uuid.UUID, existing *db.Candidate) (*db.Candidate, error) {
	text, err := s.documents.ExtractText(up.Data, up.Name)
	if err != nil {
		return nil, err
	}
	parsed, err := withModel(s, r.Context(), func(ctx context.Context) (*types.CandidateParse, error) {
		return s.assistant.ParseResume(ctx, text)
	})
	if err != nil {
		return nil, err
	}

	in := db.CandidateInput{Parsed: *parsed, ResumeText: text, UserID: userID}
	if s.blobs != nil {
		owner := "anonymous"
		if userID != nil {
			owner = userID.String()
		} else if id := actor(r); id != nil {
			owner = id.String()
		}
		key, err := s.blobs.Put(r.Context(), owner, up.Name, up.Data, up.ContentType)
		if err != nil {
			return nil, err
		}
		in.ResumeFilePath = &key
	}

	if existing != nil {
		return s.store.UpdateCandidate(r.Context(), existing.ID, in)
	}
	return s.store.CreateCandidate(r.Context(), in)
}

func (s *Server) handleExportJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "job")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	job, err := s.loadJob(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.store.ListApplicationsForJob(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteApplications(&buf, job, rows); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName(job)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// exportFileName derives a download name from the job title.
func exportFileName(job *db.Job) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, job.Title)
	name = strings.Trim(name, "-")
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	if name == "" {
		name = "job"
	}
	return name + "-applicants.xlsx"
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "application")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	details, err := s.loadDetails(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, details)
}

func (s *Server) evaluateAndStore(r *http.Request, appID uuid.UUID, job *types.JobParse, cand *db.Candidate) (*types.EvaluationResult, error) {
	res, err := withModel(s, r.Context(), func(ctx context.Context) (*types.EvaluationResult, error) {
		return s.assistant.EvaluateCandidate(ctx, job, &cand.CandidateParse, cand.ResumeText)
	})
	if err != nil {
		return nil, err
	}
	ok, err := s.store.UpdateApplicationEvaluation(r.Context(), appID, res)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ErrNotFound{Entity: "application", ID: appID.String()}
	}
	s.audit(r, db.ActionEvaluated, "application", appID, map[string]any{"overall_score": res.OverallScore})
	return res, nil
}

func (s *Server) handleEvaluateApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "application")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	details, err := s.loadDetails(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.evaluateAndStore(r, id, &details.Job.JobParse, &details.Candidate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

func (s *Server) handleUpdateStage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "application")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.StageUpdateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ok, err := s.store.UpdateApplicationStage(r.Context(), id, req.Stage)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, &ErrNotFound{Entity: "application", ID: id.String()})
		return
	}
	s.audit(r, db.ActionStageChanged, "application", id, map[string]any{"stage": req.Stage})
	s.jsonResponse(w, http.StatusOK, map[string]any{"id": id, "stage": req.Stage})
}

func (s *Server) handleScreenApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "application")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.ScreeningRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := withModel(s, r.Context(), func(ctx context.Context) (*types.ScreeningResult, error) {
		return s.assistant.SummarizeScreening(ctx, req.Transcript)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok, err := s.store.ApplyScreening(r.Context(), id, res)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, &ErrNotFound{Entity: "application", ID: id.String()})
		return
	}
	s.audit(r, db.ActionScreened, "application", id, map[string]any{"recommended_stage": res.RecommendedStage})
	s.jsonResponse(w, http.StatusOK, res)
}

func (s *Server) handleApplicationOutreach(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "application")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var opts OutreachOptions
	if r.ContentLength != 0 {
		if err := s.decodeJSON(w, r, &opts); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	details, err := s.loadDetails(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req := types.OutreachRequest{
		FirstName:   details.Candidate.FirstName(),
		JobTitle:    details.Job.Title,
		CompanyName: opts.CompanyName,
		Tone:        opts.Tone,
	}
	msg, err := withModel(s, r.Context(), func(ctx context.Context) (*types.OutreachMessage, error) {
		return s.assistant.GenerateOutreach(ctx, req)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, msg)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "application")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	notes, err := s.store.ListNotes(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"notes": notes, "count": len(notes)})
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "application")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.NoteRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	app, err := s.store.GetApplication(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if app == nil {
		s.writeError(w, r, &ErrNotFound{Entity: "application", ID: id.String()})
		return
	}
	note, err := s.store.AddNote(r.Context(), id, actor(r), req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, note)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.DashboardStats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}
