package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/ats-assistant/internal/assistant"
	"github.com/jonathan/ats-assistant/internal/config"
	"github.com/jonathan/ats-assistant/internal/db"
	"github.com/jonathan/ats-assistant/internal/llm"
	"github.com/jonathan/ats-assistant/internal/llm/llmtest"
	"github.com/jonathan/ats-assistant/internal/server/ratelimit"
	"github.com/jonathan/ats-assistant/internal/storage"
	"github.com/jonathan/ats-assistant/internal/types"
)

const (
	stubJob        = `{"title": "Backend Engineer", "must_have_skills": ["Go"], "nice_to_have_skills": [], "responsibilities": ["Build APIs"]}`
	stubCandidate  = `{"full_name": "Ada Lovelace", "email": "ada@example.com", "links": {}, "skills": ["Go"], "education": []}`
	stubEvaluation = `{"overall_score": 72, "score_breakdown": {"skills_match": 80, "experience_relevance": 70, "impact": 65, "communication": 75, "seniority_fit": 70}, "ai_summary": "Good fit", "strengths": ["Go"], "concerns": [], "missing_must_haves": [], "risk_flags": [], "suggested_interview_questions": []}`
	stubScreening  = `{"summary": "Strong call", "recommended_stage": "interview", "updated_rubric_notes": "Probe on scale"}`
	stubOutreach   = `{"subject": "Backend Engineer at Acme", "body": "Hi Ada"}`
)

type testEnv struct {
	server *Server
	client *llmtest.MockClient
	store  *memStore
	blobs  *storage.MemoryStore
	jwt    *JWTService
}

type envOption func(*Options)

func newTestEnv(t *testing.T, client *llmtest.MockClient, withStore bool, opts ...envOption) *testEnv {
	t.Helper()
	env := &testEnv{
		client: client,
		jwt:    NewJWTService(config.AuthConfig{JWTSecret: testSecret, ExpirationHours: 1}),
		blobs:  storage.NewMemoryStore("resumes"),
	}
	o := Options{
		Config:    config.ServerConfig{MaxConcurrentModelCalls: 2, MaxUploadBytes: 1 << 20, AllowedOrigins: []string{"*"}},
		Assistant: assistant.New(client, assistant.Options{CompanyName: "Acme"}),
		JWT:       env.jwt,
		Blobs:     env.blobs,
	}
	if withStore {
		env.store = newMemStore()
		o.Store = env.store
	}
	for _, opt := range opts {
		opt(&o)
	}
	s, err := New(o)
	require.NoError(t, err)
	env.server = s
	return env
}

// token signs a token and, with a store, records the user's role there.
func (e *testEnv) token(t *testing.T, role types.Role) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	if e.store != nil {
		e.store.setRole(userID, role)
	}
	tok, err := e.jwt.GenerateToken(userID, role)
	require.NoError(t, err)
	return tok, userID
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return e.do(t, method, path, token, bytes.NewReader(data), "application/json")
}

func multipartFile(t *testing.T, name string, content []byte, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{JWT: setupTestJWTService(t)})
	assert.Error(t, err)
	_, err = New(Options{Assistant: assistant.New(llmtest.NewStatic(""), assistant.Options{})})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	t.Run("without database", func(t *testing.T) {
		env := newTestEnv(t, llmtest.NewStatic(""), false)
		w := env.do(t, http.MethodGet, "/health", "", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]string{"status": "ok", "database": "disabled"}, decode[map[string]string](t, w))
	})

	t.Run("unreachable database", func(t *testing.T) {
		env := newTestEnv(t, llmtest.NewStatic(""), true)
		env.store.PingFunc = func(context.Context) error { return assert.AnError }
		w := env.do(t, http.MethodGet, "/health", "", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "unreachable", decode[map[string]string](t, w)["database"])
	})
}

func TestAuthAndRoles(t *testing.T) {
	env := newTestEnv(t, llmtest.NewStatic(stubOutreach), true)
	body := types.OutreachRequest{FirstName: "Ada", JobTitle: "Backend Engineer"}

	w := env.doJSON(t, http.MethodPost, "/ai/outreach", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.doJSON(t, http.MethodPost, "/ai/outreach", "garbage", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	candidate, _ := env.token(t, types.RoleCandidate)
	w = env.doJSON(t, http.MethodPost, "/ai/outreach", candidate, body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, env.client.Calls())

	recruiter, _ := env.token(t, types.RoleRecruiter)
	w = env.do(t, http.MethodGet, "/admin/users", recruiter, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(t, http.MethodGet, "/me/applications", recruiter, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The stored role wins over the claim.
	promoted, userID := env.token(t, types.RoleCandidate)
	env.store.setRole(userID, types.RoleManager)
	w = env.doJSON(t, http.MethodPost, "/ai/outreach", promoted, body)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatelessAIEndpoints(t *testing.T) {
	t.Run("parse job", func(t *testing.T) {
		env := newTestEnv(t, llmtest.NewStatic(stubJob), false)
		tok, _ := env.token(t, types.RoleRecruiter)
		w := env.doJSON(t, http.MethodPost, "/ai/jobs/parse", tok, types.TextRequest{Text: "We need a Go engineer."})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		job := decode[types.JobParse](t, w)
		assert.Equal(t, "Backend Engineer", job.Title)
		assert.Equal(t, types.DefaultInterviewStages(), job.InterviewStages)
	})

	t.Run("parse job from url", func(t *testing.T) {
		page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, `<html><body><div class="job-description"><h1>Backend Engineer</h1><p>Go and SQL required.</p></div></body></html>`)
		}))
		defer page.Close()

		env := newTestEnv(t, llmtest.NewStatic(stubJob), false)
		tok, _ := env.token(t, types.RoleRecruiter)
		w := env.doJSON(t, http.MethodPost, "/ai/jobs/parse", tok, types.TextRequest{URL: page.URL})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, env.client.LastPrompt(), "Go and SQL required.")
	})

	t.Run("parse job needs text or url", func(t *testing.T) {
		env := newTestEnv(t, llmtest.NewStatic(stubJob), false)
		tok, _ := env.token(t, types.RoleRecruiter)
		w := env.doJSON(t, http.MethodPost, "/ai/jobs/parse", tok, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, env.client.Calls())
	})

	t.Run("parse resume", func(t *testing.T) {
		env := newTestEnv(t, llmtest.NewStatic(stubCandidate), false)
		tok, _ := env.token(t, types.RoleManager)
		w := env.doJSON(t, http.MethodPost, "/ai/resumes/parse", tok, types.TextRequest{Text: "Ada Lovelace\nGo"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Ada Lovelace", decode[types.CandidateParse](t, w).FullName)
	})

	t.Run("evaluate", func(t *testing.T) {
		env := newTestEnv(t, llmtest.NewStatic(stubEvaluation), false)
		tok, _ := env.token(t, types.RoleAdmin)
		w := env.doJSON(t, http.MethodPost, "/ai/evaluations", tok, types.EvaluateRequest{
			Job:        &types.JobParse{Title: "Backend Engineer"},
			Candidate:  &types.CandidateParse{FullName: "Ada Lovelace"},
			ResumeText: "Ada Lovelace, Go developer",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, 72, decode[types.EvaluationResult](t, w).OverallScore)
	})

	t.Run("evaluate out of range", func(t *testing.T) {
		env := newTestEnv(t, llmtest.NewStatic(strings.Replace(stubEvaluation, `"overall_score": 72`, `"overall_score": 101`, 1)), false)
		tok, _ := env.token(t, types.RoleAdmin)
		w := env.doJSON(t, http.MethodPost, "/ai/evaluations", tok, types.EvaluateRequest{
			Job:        &types.JobParse{Title: "Backend Engineer"},
			Candidate:  &types.CandidateParse{FullName: "Ada Lovelace"},
			ResumeText: "Ada",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decode[map[string]any](t, w)
		assert.EqualValues(t, 3, body["attempts"])
		assert.Equal(t, "evaluation", body["schema"])
		assert.Equal(t, 3, env.client.Calls())
	})

	t.Run("outreach missing first name", func(t *testing.T) {
		env := newTestEnv(t, llmtest.NewStatic(stubOutreach), false)
		tok, _ := env.token(t, types.RoleRecruiter)
		w := env.doJSON(t, http.MethodPost, "/ai/outreach", tok, types.OutreachRequest{JobTitle: "Backend Engineer"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("screening", func(t *testing.T) {
		env := newTestEnv(t, llmtest.NewStatic(stubScreening), false)
		tok, _ := env.token(t, types.RoleRecruiter)
		w := env.doJSON(t, http.MethodPost, "/ai/screenings", tok, types.ScreeningRequest{Transcript: "Talked about Go."})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, types.StageInterview, decode[types.ScreeningResult](t, w).RecommendedStage)
	})

	t.Run("model unavailable", func(t *testing.T) {
		client := llmtest.NewSequence(llmtest.Reply{Err: &llm.UnavailableError{Message: "no credentials"}})
		env := newTestEnv(t, client, false)
		tok, _ := env.token(t, types.RoleRecruiter)
		w := env.doJSON(t, http.MethodPost, "/ai/screenings", tok, types.ScreeningRequest{Transcript: "notes"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, 1, client.Calls())
	})
}

func TestExtractDocument(t *testing.T) {
	env := newTestEnv(t, llmtest.NewStatic(""), false)
	tok, _ := env.token(t, types.RoleRecruiter)

	body, ct := multipartFile(t, "resume.txt", []byte("\ufeff  Hello  \n"), nil)
	w := env.do(t, http.MethodPost, "/documents/extract", tok, body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Hello", decode[map[string]any](t, w)["text"])

	body, ct = multipartFile(t, "resume.pdf", []byte("not a pdf"), nil)
	w = env.do(t, http.MethodPost, "/documents/extract", tok, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/documents/extract", tok, strings.NewReader("{}"), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStoreRoutesWithoutDatabase(t *testing.T) {
	env := newTestEnv(t, llmtest.NewStatic(""), false)
	tok, _ := env.token(t, types.RoleRecruiter)
	w := env.do(t, http.MethodGet, "/jobs", tok, nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRecruiterPipeline(t *testing.T) {
	client := llmtest.NewSequence(
		llmtest.Reply{Text: stubJob},
		llmtest.Reply{Text: stubCandidate},
		llmtest.Reply{Text: stubEvaluation},
		llmtest.Reply{Text: stubScreening},
		llmtest.Reply{Text: stubOutreach},
	)
	env := newTestEnv(t, client, true)
	tok, recruiterID := env.token(t, types.RoleRecruiter)

	// Create the job.
	w := env.doJSON(t, http.MethodPost, "/jobs", tok, CreateJobRequest{Text: "Backend Engineer, Go"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	job := decode[db.Job](t, w)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, types.JobOpen, job.Status)
	require.NotNil(t, job.CreatedBy)
	assert.Equal(t, recruiterID, *job.CreatedBy)

	w = env.do(t, http.MethodGet, "/jobs/"+job.ID.String(), tok, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/jobs/"+uuid.NewString(), tok, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodGet, "/jobs/not-a-uuid", tok, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Upload a résumé and score it right away.
	body, ct := multipartFile(t, "ada.txt", []byte("Ada Lovelace\nGo developer"), map[string]string{"evaluate": "true"})
	w = env.do(t, http.MethodPost, "/jobs/"+job.ID.String()+"/applications", tok, body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	upload := decode[UploadResult](t, w)
	require.NotNil(t, upload.Evaluation)
	assert.Equal(t, 72, upload.Evaluation.OverallScore)
	require.NotNil(t, upload.Candidate.ResumeFilePath)
	stored, err := env.blobs.Get(context.Background(), *upload.Candidate.ResumeFilePath)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace\nGo developer", string(stored))
	appPath := "/applications/" + upload.Application.ID.String()

	w = env.do(t, http.MethodGet, "/jobs/"+job.ID.String()+"/applications", tok, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["count"])

	// Screening moves the stage.
	w = env.doJSON(t, http.MethodPost, appPath+"/screening", tok, types.ScreeningRequest{Transcript: "Great call"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodGet, appPath, tok, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	details := decode[db.ApplicationDetails](t, w)
	assert.Equal(t, types.StageInterview, details.Application.Stage)
	assert.Equal(t, "Ada Lovelace", details.Candidate.FullName)

	// Outreach uses the candidate's first name and the job title.
	w = env.doJSON(t, http.MethodPost, appPath+"/outreach", tok, OutreachOptions{Tone: "formal"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, client.LastPrompt(), "Ada")
	assert.Contains(t, client.LastPrompt(), "Backend Engineer")
	assert.Contains(t, client.LastPrompt(), "Acme")

	// Stage updates are validated.
	w = env.doJSON(t, http.MethodPut, appPath+"/stage", tok, map[string]string{"stage": "withdrawn"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.doJSON(t, http.MethodPut, appPath+"/stage", tok, types.StageUpdateRequest{Stage: types.StageOffer})
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.doJSON(t, http.MethodPut, "/applications/"+uuid.NewString()+"/stage", tok, types.StageUpdateRequest{Stage: types.StageOffer})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Notes.
	w = env.doJSON(t, http.MethodPost, appPath+"/notes", tok, types.NoteRequest{Content: "Strong systems background"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.do(t, http.MethodGet, appPath+"/notes", tok, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["count"])

	// Dashboard.
	w = env.do(t, http.MethodGet, "/dashboard", tok, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[db.DashboardStats](t, w)
	assert.Equal(t, 1, stats.TotalJobs)
	assert.Equal(t, 1, stats.Funnel[types.StageOffer])

	// Export.
	w = env.do(t, http.MethodGet, "/jobs/"+job.ID.String()+"/export.xlsx", tok, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "backend-engineer-applicants.xlsx")
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Ranked Candidates")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ada Lovelace", rows[1][1])
	assert.Equal(t, "72", rows[1][4])

	assert.Equal(t, []string{
		db.ActionJobCreated, db.ActionApplicationCreated, db.ActionEvaluated,
		db.ActionScreened, db.ActionStageChanged,
	}, env.store.actions())
}

func TestAdminRoutes(t *testing.T) {
	env := newTestEnv(t, llmtest.NewStatic(""), true)
	admin, _ := env.token(t, types.RoleAdmin)
	_, target := env.token(t, types.RoleRecruiter)

	w := env.do(t, http.MethodGet, "/admin/users", admin, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["count"])

	w = env.doJSON(t, http.MethodPut, "/admin/users/"+target.String()+"/role", admin, types.RoleUpdateRequest{Role: types.RoleManager})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	role, err := env.store.GetUserRole(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, types.RoleManager, role)

	w = env.doJSON(t, http.MethodPut, "/admin/users/"+uuid.NewString()+"/role", admin, types.RoleUpdateRequest{Role: types.RoleManager})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.doJSON(t, http.MethodPut, "/admin/users/"+target.String()+"/role", admin, map[string]string{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/admin/audit-log?limit=10", admin, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["count"])
	w = env.do(t, http.MethodGet, "/admin/audit-log?limit=zero", admin, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCandidatePortal(t *testing.T) {
	client := llmtest.NewSequence(llmtest.Reply{Text: stubCandidate})
	env := newTestEnv(t, client, true)
	recruiter, _ := env.token(t, types.RoleRecruiter)
	cand, candID := env.token(t, types.RoleCandidate)

	job, err := env.store.CreateJob(context.Background(), db.JobCreateInput{Parsed: types.JobParse{Title: "Backend Engineer"}})
	require.NoError(t, err)
	closed, err := env.store.CreateJob(context.Background(), db.JobCreateInput{Parsed: types.JobParse{Title: "Old Role"}, Status: types.JobClosed})
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/me/profile", cand, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.doJSON(t, http.MethodPost, "/me/applications", cand, types.ApplyRequest{JobID: job.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, ct := multipartFile(t, "me.txt", []byte("Ada Lovelace"), nil)
	w = env.do(t, http.MethodPost, "/me/profile", cand, body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	profile := decode[db.Candidate](t, w)
	require.NotNil(t, profile.UserID)
	assert.Equal(t, candID, *profile.UserID)

	body, ct = multipartFile(t, "me.txt", []byte("Ada Lovelace, updated"), nil)
	w = env.do(t, http.MethodPost, "/me/profile", cand, body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, profile.ID, decode[db.Candidate](t, w).ID)

	w = env.doJSON(t, http.MethodPost, "/me/applications", cand, types.ApplyRequest{JobID: job.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.doJSON(t, http.MethodPost, "/me/applications", cand, types.ApplyRequest{JobID: job.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["warning"], "application")

	w = env.doJSON(t, http.MethodPost, "/me/applications", cand, types.ApplyRequest{JobID: closed.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/me/applications", cand, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["count"])

	// Candidates cannot reach recruiter tooling; recruiters can see the application.
	w = env.do(t, http.MethodGet, "/jobs/"+job.ID.String()+"/applications", cand, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(t, http.MethodGet, "/jobs/"+job.ID.String()+"/applications", recruiter, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.FromConfig(config.RateLimitConfig{
		Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute, AILimit: 1, AIWindow: time.Hour,
	}))
	defer limiter.Stop()

	env := newTestEnv(t, llmtest.NewStatic(stubScreening), false, func(o *Options) { o.Limiter = limiter })
	tok, _ := env.token(t, types.RoleRecruiter)

	w := env.doJSON(t, http.MethodPost, "/ai/screenings", tok, types.ScreeningRequest{Transcript: "notes"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = env.doJSON(t, http.MethodPost, "/ai/screenings", tok, types.ScreeningRequest{Transcript: "notes"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, 1, env.client.Calls())

	w = env.do(t, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, llmtest.NewStatic(""), false, func(o *Options) {
		o.Config.AllowedOrigins = []string{"https://ats.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/ai/outreach", nil)
	req.Header.Set("Origin", "https://ats.example.com")
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://ats.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/ai/outreach", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWithModel_WaitsForSlot(t *testing.T) {
	env := newTestEnv(t, llmtest.NewStatic(""), false)
	require.NoError(t, env.server.models.Acquire(context.Background(), 2))
	defer env.server.models.Release(2)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	called := false
	_, err := withModel(env.server, ctx, func(context.Context) (int, error) {
		called = true
		return 1, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "senior-go-engineer-remote-applicants.xlsx", exportFileName(&db.Job{JobParse: types.JobParse{Title: "Senior Go Engineer (Remote)"}}))
	assert.Equal(t, "job-applicants.xlsx", exportFileName(&db.Job{}))
}
