package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aerovane/skedcore/internal/platform/db"
)

// CronRunRepository persists one record per pipeline execution.
type CronRunRepository struct {
	db *db.PostgresDB
}

// NewCronRunRepository creates a new cron run repository.
func NewCronRunRepository(pgDB *db.PostgresDB) *CronRunRepository {
	return &CronRunRepository{db: pgDB}
}

// Create inserts a completed cron run record.
func (r *CronRunRepository) Create(ctx context.Context, run *db.CronRun) error {
	query := `
		INSERT INTO cron_runs (correlation_id, status, started_at, ended_at, duration_ms,
		                        snapshots_created, flights_analyzed, conflicts_found,
		                        rescheduled, pending_review, skipped, errors, error_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		run.CorrelationID, run.Status, run.StartedAt, run.EndedAt, run.DurationMs,
		run.SnapshotsCreated, run.FlightsAnalyzed, run.ConflictsFound,
		run.Rescheduled, run.PendingReview, run.Skipped, run.Errors, run.ErrorDetails,
	).Scan(&run.ID)
	if err != nil {
		return fmt.Errorf("create cron run: %w", err)
	}
	return nil
}

const cronRunColumns = `id, correlation_id, status, started_at, ended_at, duration_ms,
	       snapshots_created, flights_analyzed, conflicts_found,
	       rescheduled, pending_review, skipped, errors, error_details`

// List retrieves recent cron runs, newest first, optionally filtered by status.
func (r *CronRunRepository) List(ctx context.Context, limit int, status string) ([]*db.CronRun, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	query := `SELECT ` + cronRunColumns + ` FROM cron_runs`
	countQuery := `SELECT COUNT(*) FROM cron_runs`
	args := []interface{}{}

	if status != "" {
		query += ` WHERE status = $1`
		countQuery += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY started_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cron runs: %w", err)
	}
	defer rows.Close()

	var out []*db.CronRun
	for rows.Next() {
		run := &db.CronRun{}
		if err := rows.Scan(
			&run.ID, &run.CorrelationID, &run.Status, &run.StartedAt, &run.EndedAt, &run.DurationMs,
			&run.SnapshotsCreated, &run.FlightsAnalyzed, &run.ConflictsFound,
			&run.Rescheduled, &run.PendingReview, &run.Skipped, &run.Errors, &run.ErrorDetails,
		); err != nil {
			return nil, 0, fmt.Errorf("scan cron run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	countArgs := args[:len(args)-1]
	var countErr error
	var row *sql.Row
	if status != "" {
		row = r.db.QueryRowContext(ctx, countQuery, countArgs...)
	} else {
		row = r.db.QueryRowContext(ctx, countQuery)
	}
	countErr = row.Scan(&total)
	if countErr != nil {
		return nil, 0, fmt.Errorf("count cron runs: %w", countErr)
	}

	return out, total, nil
}

// PruneOlderThan deletes cron run records older than the cutoff, supporting
// the retention sweep invoked from the migration tool.
func (r *CronRunRepository) PruneOlderThan(ctx context.Context, cutoff sql.NullTime) (int64, error) {
	if !cutoff.Valid {
		return 0, nil
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM cron_runs WHERE started_at < $1`, cutoff.Time)
	if err != nil {
		return 0, fmt.Errorf("prune cron runs: %w", err)
	}
	return result.RowsAffected()
}
