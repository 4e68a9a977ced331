package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/aerovane/skedcore/internal/platform/db"
)

// FlightRepository reads and mutates flight rows. Flights are created
// externally; this core mutates status, weatherStatus, and creates the
// replacement flight of an accepted reschedule.
type FlightRepository struct {
	db *db.PostgresDB
}

// NewFlightRepository creates a new flight repository.
func NewFlightRepository(pgDB *db.PostgresDB) *FlightRepository {
	return &FlightRepository{db: pgDB}
}

func scanFlights(rows *sql.Rows) ([]*db.Flight, error) {
	var out []*db.Flight
	for rows.Next() {
		f := &db.Flight{}
		if err := rows.Scan(
			&f.ID, &f.StudentID, &f.InstructorID, &f.AircraftID,
			&f.DepartureTime, &f.ArrivalTime, &f.OriginCode, &f.DestinationCode,
			&f.Status, &f.WeatherStatus,
		); err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetByID retrieves a flight by id.
func (r *FlightRepository) GetByID(ctx context.Context, id int64) (*db.Flight, error) {
	query := `
		SELECT id, student_id, instructor_id, aircraft_id, departure_time, arrival_time,
		       origin_code, destination_code, status, weather_status
		FROM flights WHERE id = $1
	`
	f := &db.Flight{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&f.ID, &f.StudentID, &f.InstructorID, &f.AircraftID,
		&f.DepartureTime, &f.ArrivalTime, &f.OriginCode, &f.DestinationCode,
		&f.Status, &f.WeatherStatus,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query flight %d: %w", id, err)
	}
	return f, nil
}

// ListByIDs retrieves flights by an explicit id list, scheduled only.
func (r *FlightRepository) ListByIDs(ctx context.Context, ids []int64) ([]*db.Flight, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, student_id, instructor_id, aircraft_id, departure_time, arrival_time,
		       origin_code, destination_code, status, weather_status
		FROM flights WHERE id = ANY($1) AND status = $2
		ORDER BY departure_time
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids), db.FlightStatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("query flights by ids: %w", err)
	}
	defer rows.Close()
	return scanFlights(rows)
}

// ListScheduledInWindow returns flights with status=scheduled and departure
// within [from, to].
func (r *FlightRepository) ListScheduledInWindow(ctx context.Context, from, to time.Time) ([]*db.Flight, error) {
	query := `
		SELECT id, student_id, instructor_id, aircraft_id, departure_time, arrival_time,
		       origin_code, destination_code, status, weather_status
		FROM flights
		WHERE status = $1 AND departure_time >= $2 AND departure_time <= $3
		ORDER BY departure_time
	`
	rows, err := r.db.QueryContext(ctx, query, db.FlightStatusScheduled, from, to)
	if err != nil {
		return nil, fmt.Errorf("query scheduled flights in window: %w", err)
	}
	defer rows.Close()
	return scanFlights(rows)
}

// UpdateWeatherStatus writes back the classifier's verdict for a flight.
// Last-write-wins: safe under overlapping runs per the orchestrator's
// cross-run tolerance contract.
func (r *FlightRepository) UpdateWeatherStatus(ctx context.Context, flightID int64, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE flights SET weather_status = $1 WHERE id = $2`, status, flightID)
	if err != nil {
		return fmt.Errorf("update weather status for flight %d: %w", flightID, err)
	}
	return nil
}

// CreateRescheduled inserts the replacement flight and marks the original as
// rescheduled within a single transaction, so an accepted audit action never
// observes a dangling new-flight reference.
func (r *FlightRepository) CreateRescheduled(ctx context.Context, originalFlightID int64, replacement *db.Flight) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reschedule transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO flights (student_id, instructor_id, aircraft_id, departure_time, arrival_time,
		                      origin_code, destination_code, status, weather_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		replacement.StudentID, replacement.InstructorID, replacement.AircraftID,
		replacement.DepartureTime, replacement.ArrivalTime,
		replacement.OriginCode, replacement.DestinationCode,
		db.FlightStatusScheduled, db.WeatherStatusUnknown,
	).Scan(&replacement.ID)
	if err != nil {
		return 0, fmt.Errorf("insert replacement flight: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE flights SET status = $1 WHERE id = $2`, db.FlightStatusRescheduled, originalFlightID); err != nil {
		return 0, fmt.Errorf("mark original flight %d rescheduled: %w", originalFlightID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reschedule transaction: %w", err)
	}

	return replacement.ID, nil
}
