package db

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Audit actions.
const (
	ActionJobCreated         = "job.created"
	ActionApplicationCreated = "application.created"
	ActionStageChanged       = "application.stage_changed"
	ActionEvaluated          = "application.evaluated"
	ActionScreened           = "application.screened"
	ActionRoleChanged        = "profile.role_changed"
)

// RecordAudit appends an entry to the audit log.
func (db *DB) RecordAudit(ctx context.Context, actorID *uuid.UUID, action, entityType string, entityID *uuid.UUID, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO audit_log (actor_id, action, entity_type, entity_id, details) VALUES ($1, $2, $3, $4, $5)`,
		actorID, action, entityType, entityID, details,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to record audit %s", action)
	}
	return nil
}

// ListAuditLog returns the most recent entries with actor names.
func (db *DB) ListAuditLog(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.pool.Query(ctx,
		`SELECT l.id, l.actor_id, p.full_name, l.action, l.entity_type, l.entity_id, l.details, l.created_at
		 FROM audit_log l LEFT JOIN profiles p ON p.id = l.actor_id
		 ORDER BY l.created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list audit log")
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &e.Action, &e.EntityType, &e.EntityID, &e.Details, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan audit entry")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
