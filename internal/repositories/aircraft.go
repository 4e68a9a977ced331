package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aerovane/skedcore/internal/platform/db"
)

// AircraftRepository reads aircraft reference data and their committed
// flight intervals.
type AircraftRepository struct {
	db *db.PostgresDB
}

// NewAircraftRepository creates a new aircraft repository.
func NewAircraftRepository(pgDB *db.PostgresDB) *AircraftRepository {
	return &AircraftRepository{db: pgDB}
}

// GetByID retrieves an aircraft by id.
func (r *AircraftRepository) GetByID(ctx context.Context, id int64) (*db.Aircraft, error) {
	query := `SELECT id, category, availability FROM aircraft WHERE id = $1`

	a := &db.Aircraft{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Category, &a.Availability)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("aircraft %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query aircraft: %w", err)
	}
	return a, nil
}

// ListAvailable retrieves every aircraft with availability = true.
func (r *AircraftRepository) ListAvailable(ctx context.Context) ([]*db.Aircraft, error) {
	query := `SELECT id, category, availability FROM aircraft WHERE availability = true ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list available aircraft: %w", err)
	}
	defer rows.Close()

	var out []*db.Aircraft
	for rows.Next() {
		a := &db.Aircraft{}
		if err := rows.Scan(&a.ID, &a.Category, &a.Availability); err != nil {
			return nil, fmt.Errorf("scan aircraft: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CommittedFlights returns the aircraft's scheduled/rescheduled flights
// whose departure falls within [from, to].
func (r *AircraftRepository) CommittedFlights(ctx context.Context, aircraftID int64, from, to time.Time) ([]*db.Flight, error) {
	query := `
		SELECT id, student_id, instructor_id, aircraft_id, departure_time, arrival_time,
		       origin_code, destination_code, status, weather_status
		FROM flights
		WHERE aircraft_id = $1
		  AND status IN ('scheduled', 'rescheduled')
		  AND departure_time >= $2 AND departure_time <= $3
		ORDER BY departure_time
	`
	rows, err := r.db.QueryContext(ctx, query, aircraftID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query aircraft committed flights: %w", err)
	}
	defer rows.Close()

	return scanFlights(rows)
}
