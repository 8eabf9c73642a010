package db

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/jonathan/ats-assistant/internal/types"
)

// DashboardStats returns job counts, the hiring funnel and the most recent
// applications.
func (db *DB) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{Funnel: EmptyFunnel(), RecentActivity: []RecentApplication{}}

	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'open') FROM jobs`,
	).Scan(&stats.TotalJobs, &stats.OpenJobs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count jobs")
	}

	rows, err := db.pool.Query(ctx, `SELECT stage, COUNT(*) FROM applications GROUP BY stage`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count applications")
	}
	for rows.Next() {
		var stage types.Stage
		var n int
		if err := rows.Scan(&stage, &n); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan funnel")
		}
		stats.Funnel[stage] = n
		stats.TotalApplications += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to count applications")
	}

	rows, err = db.pool.Query(ctx,
		`SELECT a.id, c.full_name, j.title, a.stage, a.created_at
		 FROM applications a
		 JOIN candidates c ON c.id = a.candidate_id
		 JOIN jobs j ON j.id = a.job_id
		 ORDER BY a.created_at DESC
		 LIMIT $1`,
		RecentActivityLimit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recent applications")
	}
	defer rows.Close()
	for rows.Next() {
		var r RecentApplication
		if err := rows.Scan(&r.ApplicationID, &r.CandidateName, &r.JobTitle, &r.Stage, &r.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan recent application")
		}
		stats.RecentActivity = append(stats.RecentActivity, r)
	}
	return stats, rows.Err()
}
