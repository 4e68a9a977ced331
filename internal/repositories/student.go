// Package repositories provides data access layer for database operations.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aerovane/skedcore/internal/platform/db"
)

// StudentRepository reads student reference data. Students are owned
// externally to the core; this component never writes them.
type StudentRepository struct {
	db *db.PostgresDB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(pgDB *db.PostgresDB) *StudentRepository {
	return &StudentRepository{db: pgDB}
}

// GetByID retrieves a student by id.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*db.Student, error) {
	query := `SELECT id, training_level FROM students WHERE id = $1`

	s := &db.Student{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.TrainingLevel)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("student %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query student: %w", err)
	}
	return s, nil
}
