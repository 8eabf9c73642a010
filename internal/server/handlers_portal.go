package server

import (
	"net/http"

	"github.com/jonathan/ats-assistant/internal/db"
	"github.com/jonathan/ats-assistant/internal/server/middleware"
	"github.com/jonathan/ats-assistant/internal/types"
)

// myCandidate returns the candidate linked to the signed-in user, or nil.
func (s *Server) myCandidate(r *http.Request) (*db.Candidate, error) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil, err
	}
	return s.store.GetCandidateByUser(r.Context(), userID)
}

func (s *Server) handleGetMyProfile(w http.ResponseWriter, r *http.Request) {
	cand, err := s.myCandidate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cand == nil {
		s.writeError(w, r, &ErrNotFound{Entity: "candidate profile", ID: "me"})
		return
	}
	s.jsonResponse(w, http.StatusOK, cand)
}

// handleUploadMyProfile parses an uploaded résumé into the user's
// candidate profile, creating it on first upload.
func (s *Server) handleUploadMyProfile(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r, "file")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	existing, err := s.myCandidate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cand, err := s.candidateFromUpload(r, up, actor(r), existing)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if existing != nil {
		status = http.StatusOK
	}
	s.jsonResponse(w, status, cand)
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req types.ApplyRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	cand, err := s.myCandidate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cand == nil {
		s.writeError(w, r, &ErrValidation{Field: "profile", Message: "upload a résumé before applying"})
		return
	}
	job, err := s.loadJob(r.Context(), req.JobID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if job.Status != types.JobOpen {
		s.writeError(w, r, &ErrValidation{Field: "job_id", Message: "job is not open for applications"})
		return
	}

	app, err := s.store.CreateApplication(r.Context(), job.ID, cand.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.audit(r, db.ActionApplicationCreated, "application", app.ID, map[string]any{"job_id": job.ID, "candidate_id": cand.ID})
	s.jsonResponse(w, http.StatusCreated, app)
}

func (s *Server) handleListMyApplications(w http.ResponseWriter, r *http.Request) {
	cand, err := s.myCandidate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	apps := []db.CandidateApplication{}
	if cand != nil {
		apps, err = s.store.ListApplicationsForCandidate(r.Context(), cand.ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"applications": apps, "count": len(apps)})
}
