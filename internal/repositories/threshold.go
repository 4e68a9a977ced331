package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aerovane/skedcore/internal/platform/db"
)

// ThresholdRepository reads training-threshold reference data, one row per
// training level.
type ThresholdRepository struct {
	db *db.PostgresDB
}

// NewThresholdRepository creates a new threshold repository.
func NewThresholdRepository(pgDB *db.PostgresDB) *ThresholdRepository {
	return &ThresholdRepository{db: pgDB}
}

// GetByTrainingLevel retrieves the threshold row for a training level.
func (r *ThresholdRepository) GetByTrainingLevel(ctx context.Context, level string) (*db.TrainingThreshold, error) {
	query := `
		SELECT training_level, max_wind_speed, min_visibility, min_ceiling
		FROM training_thresholds WHERE training_level = $1
	`
	t := &db.TrainingThreshold{}
	err := r.db.QueryRowContext(ctx, query, level).Scan(&t.TrainingLevel, &t.MaxWindSpeed, &t.MinVisibility, &t.MinCeiling)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query threshold for level %s: %w", level, err)
	}
	return t, nil
}
