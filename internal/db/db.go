// Package db provides PostgreSQL access for jobs, candidates, applications
// and their notes and audit trail.
package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Migrate creates any missing tables and indexes.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}

// Schema returns the DDL applied by Migrate.
func Schema() string {
	return schemaSQL
}

// DuplicateRecordError is returned when an insert collides with a unique
// constraint, e.g. a candidate applying to the same job twice.
type DuplicateRecordError struct {
	Entity     string
	Constraint string
	Cause      error
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("%s already exists (%s)", e.Entity, e.Constraint)
}

func (e *DuplicateRecordError) Unwrap() error {
	return e.Cause
}

// IsDuplicate reports whether err is a *DuplicateRecordError.
func IsDuplicate(err error) bool {
	var de *DuplicateRecordError
	return errors.As(err, &de)
}

// wrapErr converts unique violations to *DuplicateRecordError and wraps
// everything else with msg.
func wrapErr(err error, entity, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &DuplicateRecordError{Entity: entity, Constraint: pgErr.ConstraintName, Cause: err}
	}
	return errors.Wrap(err, msg)
}

// isNoRows reports whether err means the query matched nothing.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
