package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aerovane/skedcore/internal/platform/db"
)

// RescheduleActionRepository provides the append-only audit log of
// reschedule decisions.
type RescheduleActionRepository struct {
	db *db.PostgresDB
}

// NewRescheduleActionRepository creates a new reschedule action repository.
func NewRescheduleActionRepository(pgDB *db.PostgresDB) *RescheduleActionRepository {
	return &RescheduleActionRepository{db: pgDB}
}

// Create inserts a new reschedule action. Append-only.
func (r *RescheduleActionRepository) Create(ctx context.Context, a *db.RescheduleAction) error {
	query := `
		INSERT INTO reschedule_actions (original_flight_id, new_flight_id, action_type,
		                                 decision_source, deciding_principal, decision_instant,
		                                 ai_rationale, weather_snapshot_ref, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		a.OriginalFlightID, a.NewFlightID, a.ActionType,
		a.DecisionSource, a.DecidingPrincipal, a.DecisionInstant,
		a.AIRationale, a.WeatherSnapshotRef, a.Notes, a.Status,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create reschedule action: %w", err)
	}
	return nil
}

const rescheduleActionColumns = `id, original_flight_id, new_flight_id, action_type,
	       decision_source, deciding_principal, decision_instant, ai_rationale,
	       weather_snapshot_ref, notes, status`

// GetByID retrieves a reschedule action by id.
func (r *RescheduleActionRepository) GetByID(ctx context.Context, id int64) (*db.RescheduleAction, error) {
	query := `SELECT ` + rescheduleActionColumns + ` FROM reschedule_actions WHERE id = $1`
	a := &db.RescheduleAction{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.OriginalFlightID, &a.NewFlightID, &a.ActionType,
		&a.DecisionSource, &a.DecidingPrincipal, &a.DecisionInstant, &a.AIRationale,
		&a.WeatherSnapshotRef, &a.Notes, &a.Status,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query reschedule action %d: %w", id, err)
	}
	return a, nil
}

// History returns reschedule actions referencing flightID as either the
// original or the new flight, newest-first.
func (r *RescheduleActionRepository) History(ctx context.Context, flightID int64) ([]*db.RescheduleAction, error) {
	query := `
		SELECT ` + rescheduleActionColumns + `
		FROM reschedule_actions
		WHERE original_flight_id = $1 OR new_flight_id = $1
		ORDER BY decision_instant DESC
	`
	rows, err := r.db.QueryContext(ctx, query, flightID)
	if err != nil {
		return nil, fmt.Errorf("query reschedule history for flight %d: %w", flightID, err)
	}
	defer rows.Close()

	var out []*db.RescheduleAction
	for rows.Next() {
		a := &db.RescheduleAction{}
		if err := rows.Scan(
			&a.ID, &a.OriginalFlightID, &a.NewFlightID, &a.ActionType,
			&a.DecisionSource, &a.DecidingPrincipal, &a.DecisionInstant, &a.AIRationale,
			&a.WeatherSnapshotRef, &a.Notes, &a.Status,
		); err != nil {
			return nil, fmt.Errorf("scan reschedule action: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
