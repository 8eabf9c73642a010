package db

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const candidateColumns = `id, user_id, full_name, email, phone, location, links, experience_years,
	skills, education, resume_text, resume_file_path, created_at`

func scanCandidate(row pgx.Row) (*Candidate, error) {
	var c Candidate
	err := row.Scan(&c.ID, &c.UserID, &c.FullName, &c.Email, &c.Phone, &c.Location, &c.Links,
		&c.ExperienceYears, &c.Skills, &c.Education, &c.ResumeText, &c.ResumeFilePath, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func linksOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// CreateCandidate inserts a candidate. A candidate linked to a user that
// already has one yields *DuplicateRecordError.
func (db *DB) CreateCandidate(ctx context.Context, in CandidateInput) (*Candidate, error) {
	p := in.Parsed
	c, err := scanCandidate(db.pool.QueryRow(ctx,
		`INSERT INTO candidates (user_id, full_name, email, phone, location, links, experience_years,
			skills, education, resume_text, resume_file_path)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+candidateColumns,
		in.UserID, p.FullName, p.Email, p.Phone, p.Location, linksOrEmpty(p.Links), p.ExperienceYears,
		nonNil(p.Skills), nonNil(p.Education), in.ResumeText, in.ResumeFilePath,
	))
	if err != nil {
		return nil, wrapErr(err, "candidate", "failed to create candidate")
	}
	return c, nil
}

// GetCandidate retrieves a candidate by ID. Returns nil if not found.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*Candidate, error) {
	c, err := scanCandidate(db.pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get candidate")
	}
	return c, nil
}

// GetCandidateByUser returns the candidate linked to userID. Returns nil if none.
func (db *DB) GetCandidateByUser(ctx context.Context, userID uuid.UUID) (*Candidate, error) {
	c, err := scanCandidate(db.pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE user_id = $1`, userID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get candidate by user")
	}
	return c, nil
}

// UpdateCandidate replaces a candidate's parsed fields and résumé. A nil
// ResumeFilePath keeps the stored one.
func (db *DB) UpdateCandidate(ctx context.Context, id uuid.UUID, in CandidateInput) (*Candidate, error) {
	p := in.Parsed
	c, err := scanCandidate(db.pool.QueryRow(ctx,
		`UPDATE candidates SET full_name = $2, email = $3, phone = $4, location = $5, links = $6,
			experience_years = $7, skills = $8, education = $9, resume_text = $10,
			resume_file_path = COALESCE($11, resume_file_path)
		 WHERE id = $1
		 RETURNING `+candidateColumns,
		id, p.FullName, p.Email, p.Phone, p.Location, linksOrEmpty(p.Links), p.ExperienceYears,
		nonNil(p.Skills), nonNil(p.Education), in.ResumeText, in.ResumeFilePath,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to update candidate")
	}
	return c, nil
}
