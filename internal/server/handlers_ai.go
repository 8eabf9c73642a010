package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/jonathan/ats-assistant/internal/ingestion"
	"github.com/jonathan/ats-assistant/internal/types"
)

// validatable is a request body with struct-tag validation.
type validatable interface {
	Validate() error
}

// decodeJSON reads the body into v and validates it.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v validatable) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return v.Validate()
}

// upload is a file received as multipart form data.
type upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// readUpload reads the multipart file in field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		return nil, &ErrValidation{Field: field, Message: "expected multipart form data: " + err.Error()}
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, &ErrValidation{Field: field, Message: "file is required"}
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upload")
	}
	if len(data) == 0 {
		return nil, &ErrValidation{Field: field, Message: "file is empty"}
	}
	return &upload{Name: header.Filename, ContentType: header.Header.Get("Content-Type"), Data: data}, nil
}

// jobText returns the job description text from a body that carries either
// raw text or a posting URL.
func (s *Server) jobText(r *http.Request, text, url string) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}
	doc, err := ingestion.JobDescriptionFromURL(r.Context(), s.fetcher, url)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}

func (s *Server) handleExtractDocument(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r, "file")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.documents.Extract(up.Data, up.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

func (s *Server) handleParseJob(w http.ResponseWriter, r *http.Request) {
	var req types.TextRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	text, err := s.jobText(r, req.Text, req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	job, err := withModel(s, r.Context(), func(ctx context.Context) (*types.JobParse, error) {
		return s.assistant.ParseJobDescription(ctx, text)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	var req types.TextRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.URL != "" {
		s.writeError(w, r, &ErrValidation{Field: "url", Message: "résumés are parsed from text; upload files to /documents/extract"})
		return
	}
	cand, err := withModel(s, r.Context(), func(ctx context.Context) (*types.CandidateParse, error) {
		return s.assistant.ParseResume(ctx, req.Text)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, cand)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req types.EvaluateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := withModel(s, r.Context(), func(ctx context.Context) (*types.EvaluationResult, error) {
		return s.assistant.EvaluateCandidate(ctx, req.Job, req.Candidate, req.ResumeText)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

func (s *Server) handleOutreach(w http.ResponseWriter, r *http.Request) {
	var req types.OutreachRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
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

func (s *Server) handleScreening(w http.ResponseWriter, r *http.Request) {
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
	s.jsonResponse(w, http.StatusOK, res)
}
