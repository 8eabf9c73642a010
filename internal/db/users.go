package db

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/jonathan/ats-assistant/internal/types"
)

const profileColumns = `id, full_name, email, role, created_at`

// GetUserRole returns the role of userID. A user without a profile gets a
// recruiter profile created on first sight.
func (db *DB) GetUserRole(ctx context.Context, userID uuid.UUID) (types.Role, error) {
	var role string
	err := db.pool.QueryRow(ctx,
		`INSERT INTO profiles (id, role, full_name) VALUES ($1, $2, 'New User')
		 ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		 RETURNING role`,
		userID, types.RoleRecruiter,
	).Scan(&role)
	if err != nil {
		return "", errors.Wrap(err, "failed to get user role")
	}
	return types.ParseRole(role)
}

// GetProfile retrieves a profile by ID. Returns nil if not found.
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var p Profile
	err := db.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID,
	).Scan(&p.ID, &p.FullName, &p.Email, &p.Role, &p.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get profile")
	}
	return &p, nil
}

// UpdateUserRole changes a user's role. Returns false if the user does not exist.
func (db *DB) UpdateUserRole(ctx context.Context, userID uuid.UUID, role types.Role) (bool, error) {
	if _, err := types.ParseRole(string(role)); err != nil {
		return false, err
	}
	tag, err := db.pool.Exec(ctx, `UPDATE profiles SET role = $1 WHERE id = $2`, role, userID)
	if err != nil {
		return false, errors.Wrap(err, "failed to update user role")
	}
	return tag.RowsAffected() > 0, nil
}

// ListUsers returns every profile, newest first.
func (db *DB) ListUsers(ctx context.Context) ([]Profile, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	users := []Profile{}
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.FullName, &p.Email, &p.Role, &p.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan user")
		}
		users = append(users, p)
	}
	return users, rows.Err()
}
