package db

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/ats-assistant/internal/types"
)

const jobColumns = `id, created_by, title, team, location, employment_type, comp_range_min, comp_range_max,
	must_have_skills, nice_to_have_skills, responsibilities, interview_stages, jd_text, status, created_at`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.CreatedBy, &j.Title, &j.Team, &j.Location, &j.EmploymentType,
		&j.CompRangeMin, &j.CompRangeMax, &j.MustHaveSkills, &j.NiceToHaveSkills, &j.Responsibilities,
		&j.InterviewStages, &j.JDText, &j.Status, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJob inserts a job built from a parsed description.
func (db *DB) CreateJob(ctx context.Context, in JobCreateInput) (*Job, error) {
	status := in.Status
	if status == "" {
		status = types.JobOpen
	}
	p := in.Parsed
	stages := p.InterviewStages
	if stages == nil {
		stages = []types.InterviewStage{}
	}

	job, err := scanJob(db.pool.QueryRow(ctx,
		`INSERT INTO jobs (created_by, title, team, location, employment_type, comp_range_min, comp_range_max,
			must_have_skills, nice_to_have_skills, responsibilities, interview_stages, jd_text, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING `+jobColumns,
		in.CreatedBy, p.Title, p.Team, p.Location, p.EmploymentType, p.CompRangeMin, p.CompRangeMax,
		nonNil(p.MustHaveSkills), nonNil(p.NiceToHaveSkills), nonNil(p.Responsibilities), stages,
		in.JDText, status,
	))
	if err != nil {
		return nil, wrapErr(err, "job", "failed to create job")
	}
	return job, nil
}

// GetJob retrieves a job by ID. Returns nil if not found.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	job, err := scanJob(db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get job")
	}
	return job, nil
}

// ListJobs returns jobs newest first, optionally filtered by status.
func (db *DB) ListJobs(ctx context.Context, status types.JobStatus) ([]Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE $1 = '' OR status = $1
		 ORDER BY created_at DESC`,
		string(status),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list jobs")
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan job")
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// UpdateJobStatus opens, closes or drafts a job. Returns false if it does not exist.
func (db *DB) UpdateJobStatus(ctx context.Context, id uuid.UUID, status types.JobStatus) (bool, error) {
	tag, err := db.pool.Exec(ctx, `UPDATE jobs SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return false, errors.Wrap(err, "failed to update job status")
	}
	return tag.RowsAffected() > 0, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
