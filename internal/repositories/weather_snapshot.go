package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aerovane/skedcore/internal/platform/db"
)

// WeatherSnapshotRepository provides the append-only snapshot store:
// forecast persistence plus staleness-oriented lookups.
type WeatherSnapshotRepository struct {
	db *db.PostgresDB
}

// NewWeatherSnapshotRepository creates a new weather snapshot repository.
func NewWeatherSnapshotRepository(pgDB *db.PostgresDB) *WeatherSnapshotRepository {
	return &WeatherSnapshotRepository{db: pgDB}
}

func scanSnapshot(row *sql.Row) (*db.WeatherSnapshot, error) {
	s := &db.WeatherSnapshot{}
	err := row.Scan(
		&s.ID, &s.FlightID, &s.CheckpointType, &s.LocationCode, &s.ForecastInstant,
		&s.WindSpeed, &s.Visibility, &s.Ceiling, &s.Conditions, &s.ConfidenceHorizon,
		&s.CorrelationID, &s.CreatedAt, &s.RevalidationToken,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan weather snapshot: %w", err)
	}
	return s, nil
}

func scanSnapshots(rows *sql.Rows) ([]*db.WeatherSnapshot, error) {
	var out []*db.WeatherSnapshot
	for rows.Next() {
		s := &db.WeatherSnapshot{}
		if err := rows.Scan(
			&s.ID, &s.FlightID, &s.CheckpointType, &s.LocationCode, &s.ForecastInstant,
			&s.WindSpeed, &s.Visibility, &s.Ceiling, &s.Conditions, &s.ConfidenceHorizon,
			&s.CorrelationID, &s.CreatedAt, &s.RevalidationToken,
		); err != nil {
			return nil, fmt.Errorf("scan weather snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const snapshotColumns = `id, flight_id, checkpoint_type, location_code, forecast_instant,
	       wind_speed, visibility, ceiling, conditions, confidence_horizon_hours,
	       correlation_id, created_at, revalidation_token`

// Append inserts a new weather snapshot. Insert-only; never mutated.
func (r *WeatherSnapshotRepository) Append(ctx context.Context, s *db.WeatherSnapshot) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO weather_snapshots (flight_id, checkpoint_type, location_code, forecast_instant,
		                                wind_speed, visibility, ceiling, conditions,
		                                confidence_horizon_hours, correlation_id, created_at, revalidation_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		s.FlightID, s.CheckpointType, s.LocationCode, s.ForecastInstant,
		s.WindSpeed, s.Visibility, s.Ceiling, s.Conditions,
		s.ConfidenceHorizon, s.CorrelationID, s.CreatedAt, s.RevalidationToken,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("append weather snapshot: %w", err)
	}
	return nil
}

// LatestForFlightCheckpoint returns the newest snapshot for (flightId, checkpointType).
func (r *WeatherSnapshotRepository) LatestForFlightCheckpoint(ctx context.Context, flightID int64, checkpointType string) (*db.WeatherSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM weather_snapshots
		WHERE flight_id = $1 AND checkpoint_type = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, flightID, checkpointType)
	return scanSnapshot(row)
}

// LatestForLocationForecast returns the newest snapshot for (location, forecastInstant),
// used by the gateway's revalidation-token lookup.
func (r *WeatherSnapshotRepository) LatestForLocationForecast(ctx context.Context, location string, forecastInstant time.Time) (*db.WeatherSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM weather_snapshots
		WHERE location_code = $1 AND forecast_instant = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, location, forecastInstant)
	return scanSnapshot(row)
}

// LatestPerCheckpointForFlight returns up to three snapshots, one per
// checkpoint type, the newest of each: used by the classifier.
func (r *WeatherSnapshotRepository) LatestPerCheckpointForFlight(ctx context.Context, flightID int64) (map[string]*db.WeatherSnapshot, error) {
	query := `
		SELECT DISTINCT ON (checkpoint_type) ` + snapshotColumns + `
		FROM weather_snapshots
		WHERE flight_id = $1
		ORDER BY checkpoint_type, created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, flightID)
	if err != nil {
		return nil, fmt.Errorf("query latest per-checkpoint snapshots for flight %d: %w", flightID, err)
	}
	defer rows.Close()

	snapshots, err := scanSnapshots(rows)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*db.WeatherSnapshot, len(snapshots))
	for _, s := range snapshots {
		out[s.CheckpointType] = s
	}
	return out, nil
}

// QueryFilters bounds a history query against the snapshot store.
type QueryFilters struct {
	FlightID       int64
	CheckpointType string // optional
	StartDate      time.Time
	EndDate        time.Time
	Limit          int
}

// Query retrieves snapshots for history views, bounded to at most 500 rows.
func (r *WeatherSnapshotRepository) Query(ctx context.Context, f QueryFilters) ([]*db.WeatherSnapshot, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	query := `SELECT ` + snapshotColumns + ` FROM weather_snapshots WHERE flight_id = $1`
	args := []interface{}{f.FlightID}
	argIdx := 2

	if f.CheckpointType != "" {
		query += fmt.Sprintf(" AND checkpoint_type = $%d", argIdx)
		args = append(args, f.CheckpointType)
		argIdx++
	}
	if !f.StartDate.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, f.StartDate)
		argIdx++
	}
	if !f.EndDate.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, f.EndDate)
		argIdx++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query weather snapshots: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// DeleteOlderThan removes weather snapshots older than the given instant,
// the retention sweep invoked via `skedcore-migrate --prune-snapshots`.
// reschedule_actions are never pruned; they stay append-only forever.
func (r *WeatherSnapshotRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM weather_snapshots WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete old weather snapshots: %w", err)
	}
	return result.RowsAffected()
}

// Staleness buckets a snapshot's age against now.
type Staleness string

const (
	StalenessFresh     Staleness = "fresh"
	StalenessAcceptable Staleness = "acceptable"
	StalenessStale      Staleness = "stale"
	StalenessVeryStale  Staleness = "very-stale"
)

// ClassifyStaleness buckets age since creation and reports the warning flag.
func ClassifyStaleness(createdAt, now time.Time) (Staleness, bool) {
	age := now.Sub(createdAt)
	switch {
	case age < time.Hour:
		return StalenessFresh, false
	case age < 6*time.Hour:
		return StalenessAcceptable, false
	case age < 24*time.Hour:
		return StalenessStale, true
	default:
		return StalenessVeryStale, true
	}
}
