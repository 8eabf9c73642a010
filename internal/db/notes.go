package db

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// AddNote attaches a note to an application.
func (db *DB) AddNote(ctx context.Context, applicationID uuid.UUID, authorID *uuid.UUID, text string) (*Note, error) {
	var n Note
	err := db.pool.QueryRow(ctx,
		`INSERT INTO notes (application_id, author_id, note) VALUES ($1, $2, $3)
		 RETURNING id, application_id, author_id, note, created_at`,
		applicationID, authorID, text,
	).Scan(&n.ID, &n.ApplicationID, &n.AuthorID, &n.Note, &n.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to add note")
	}
	return &n, nil
}

// ListNotes returns an application's notes with author names, newest first.
func (db *DB) ListNotes(ctx context.Context, applicationID uuid.UUID) ([]Note, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT n.id, n.application_id, n.author_id, p.full_name, n.note, n.created_at
		 FROM notes n LEFT JOIN profiles p ON p.id = n.author_id
		 WHERE n.application_id = $1
		 ORDER BY n.created_at DESC`,
		applicationID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notes")
	}
	defer rows.Close()

	notes := []Note{}
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.ApplicationID, &n.AuthorID, &n.AuthorName, &n.Note, &n.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan note")
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
