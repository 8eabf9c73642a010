package db

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/ats-assistant/internal/types"
)

const applicationColumns = `a.id, a.job_id, a.candidate_id, a.stage, a.overall_score, a.score_breakdown, a.ai_summary,
	a.strengths, a.concerns, a.missing_must_haves, a.risk_flags, a.suggested_interview_questions,
	a.screening_summary, a.rubric_notes, a.created_at, a.updated_at`

func applicationDest(a *Application) []any {
	return []any{&a.ID, &a.JobID, &a.CandidateID, &a.Stage, &a.OverallScore, &a.ScoreBreakdown, &a.AISummary,
		&a.Strengths, &a.Concerns, &a.MissingMustHaves, &a.RiskFlags, &a.SuggestedInterviewQuestions,
		&a.ScreeningSummary, &a.RubricNotes, &a.CreatedAt, &a.UpdatedAt}
}

func scanApplication(row pgx.Row) (*Application, error) {
	var a Application
	if err := row.Scan(applicationDest(&a)...); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateApplication applies a candidate to a job at stage new. Applying
// twice yields *DuplicateRecordError.
func (db *DB) CreateApplication(ctx context.Context, jobID, candidateID uuid.UUID) (*Application, error) {
	app, err := scanApplication(db.pool.QueryRow(ctx,
		`INSERT INTO applications AS a (job_id, candidate_id, stage) VALUES ($1, $2, $3)
		 RETURNING `+applicationColumns,
		jobID, candidateID, types.StageNew,
	))
	if err != nil {
		return nil, wrapErr(err, "application", "failed to create application")
	}
	return app, nil
}

// GetApplication retrieves an application by ID. Returns nil if not found.
func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*Application, error) {
	app, err := scanApplication(db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications a WHERE a.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get application")
	}
	return app, nil
}

// ListApplicationsForJob returns a job's applications with candidate
// contact details, best score first and unevaluated last.
func (db *DB) ListApplicationsForJob(ctx context.Context, jobID uuid.UUID) ([]ApplicationRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+applicationColumns+`, c.full_name, c.email
		 FROM applications a JOIN candidates c ON c.id = a.candidate_id
		 WHERE a.job_id = $1
		 ORDER BY a.overall_score DESC NULLS LAST, a.created_at`,
		jobID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list applications")
	}
	defer rows.Close()

	out := []ApplicationRow{}
	for rows.Next() {
		var r ApplicationRow
		dest := append(applicationDest(&r.Application), &r.CandidateName, &r.CandidateEmail)
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "failed to scan application")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListApplicationsForCandidate returns a candidate's applications with job
// title and status, newest first.
func (db *DB) ListApplicationsForCandidate(ctx context.Context, candidateID uuid.UUID) ([]CandidateApplication, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+applicationColumns+`, j.title, j.location, j.status
		 FROM applications a JOIN jobs j ON j.id = a.job_id
		 WHERE a.candidate_id = $1
		 ORDER BY a.created_at DESC`,
		candidateID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list candidate applications")
	}
	defer rows.Close()

	out := []CandidateApplication{}
	for rows.Next() {
		var r CandidateApplication
		dest := append(applicationDest(&r.Application), &r.JobTitle, &r.JobLocation, &r.JobStatus)
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "failed to scan candidate application")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetApplicationDetails returns an application with its job and candidate.
// Returns nil if not found.
func (db *DB) GetApplicationDetails(ctx context.Context, id uuid.UUID) (*ApplicationDetails, error) {
	app, err := db.GetApplication(ctx, id)
	if err != nil || app == nil {
		return nil, err
	}
	job, err := db.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	cand, err := db.GetCandidate(ctx, app.CandidateID)
	if err != nil {
		return nil, err
	}
	if job == nil || cand == nil {
		return nil, errors.Newf("application %s references a missing job or candidate", id)
	}
	return &ApplicationDetails{Application: *app, Job: *job, Candidate: *cand}, nil
}

// UpdateApplicationStage moves an application to stage. Returns false if it
// does not exist.
func (db *DB) UpdateApplicationStage(ctx context.Context, id uuid.UUID, stage types.Stage) (bool, error) {
	if _, err := types.ParseStage(string(stage)); err != nil {
		return false, err
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE applications SET stage = $1, updated_at = NOW() WHERE id = $2`, stage, id)
	if err != nil {
		return false, errors.Wrap(err, "failed to update stage")
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateApplicationEvaluation stores an evaluation result. Returns false if
// the application does not exist.
func (db *DB) UpdateApplicationEvaluation(ctx context.Context, id uuid.UUID, res *types.EvaluationResult) (bool, error) {
	if res == nil {
		return false, errors.New("evaluation result is nil")
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE applications SET overall_score = $2, score_breakdown = $3, ai_summary = $4,
			strengths = $5, concerns = $6, missing_must_haves = $7, risk_flags = $8,
			suggested_interview_questions = $9, updated_at = NOW()
		 WHERE id = $1`,
		id, res.OverallScore, res.ScoreBreakdown, res.AISummary,
		nonNil(res.Strengths), nonNil(res.Concerns), nonNil(res.MissingMustHaves), nonNil(res.RiskFlags),
		nonNil(res.SuggestedInterviewQuestions),
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to update evaluation")
	}
	return tag.RowsAffected() > 0, nil
}

// ApplyScreening stores a screening summary and moves the application to
// the recommended stage. Returns false if the application does not exist.
func (db *DB) ApplyScreening(ctx context.Context, id uuid.UUID, res *types.ScreeningResult) (bool, error) {
	if res == nil {
		return false, errors.New("screening result is nil")
	}
	if _, err := types.ParseStage(string(res.RecommendedStage)); err != nil {
		return false, err
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE applications SET stage = $2, screening_summary = $3, rubric_notes = $4, updated_at = NOW()
		 WHERE id = $1`,
		id, res.RecommendedStage, res.Summary, res.UpdatedRubricNotes,
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to apply screening")
	}
	return tag.RowsAffected() > 0, nil
}
