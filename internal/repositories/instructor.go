package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aerovane/skedcore/internal/platform/db"
)

// InstructorRepository reads instructor reference data and their committed
// flight intervals, used by the candidate generator's availability search.
type InstructorRepository struct {
	db *db.PostgresDB
}

// NewInstructorRepository creates a new instructor repository.
func NewInstructorRepository(pgDB *db.PostgresDB) *InstructorRepository {
	return &InstructorRepository{db: pgDB}
}

// GetByID retrieves an instructor by id.
func (r *InstructorRepository) GetByID(ctx context.Context, id int64) (*db.Instructor, error) {
	query := `SELECT id, certifications FROM instructors WHERE id = $1`

	inst := &db.Instructor{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&inst.ID, &inst.Certifications)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("instructor %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query instructor: %w", err)
	}
	return inst, nil
}

// ListAll retrieves every instructor.
func (r *InstructorRepository) ListAll(ctx context.Context) ([]*db.Instructor, error) {
	query := `SELECT id, certifications FROM instructors ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	defer rows.Close()

	var out []*db.Instructor
	for rows.Next() {
		inst := &db.Instructor{}
		if err := rows.Scan(&inst.ID, &inst.Certifications); err != nil {
			return nil, fmt.Errorf("scan instructor: %w", err)
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// Certifications decodes the JSON-encoded certification list.
func Certifications(inst *db.Instructor) ([]string, error) {
	if len(inst.Certifications) == 0 {
		return nil, nil
	}
	var certs []string
	if err := json.Unmarshal(inst.Certifications, &certs); err != nil {
		return nil, fmt.Errorf("decode certifications: %w", err)
	}
	return certs, nil
}

// CommittedFlights returns the instructor's scheduled/rescheduled flights
// whose departure falls within [from, to].
func (r *InstructorRepository) CommittedFlights(ctx context.Context, instructorID int64, from, to time.Time) ([]*db.Flight, error) {
	query := `
		SELECT id, student_id, instructor_id, aircraft_id, departure_time, arrival_time,
		       origin_code, destination_code, status, weather_status
		FROM flights
		WHERE instructor_id = $1
		  AND status IN ('scheduled', 'rescheduled')
		  AND departure_time >= $2 AND departure_time <= $3
		ORDER BY departure_time
	`
	rows, err := r.db.QueryContext(ctx, query, instructorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query instructor committed flights: %w", err)
	}
	defer rows.Close()

	return scanFlights(rows)
}
