// Package classifier implements per-flight, per-checkpoint threshold
// evaluation and weather-status assignment.
package classifier

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aerovane/skedcore/internal/platform/db"
	"github.com/aerovane/skedcore/internal/platform/observability"
	"github.com/aerovane/skedcore/internal/repositories"
)

// BreachedCheckpoint echoes a failing checkpoint's conditions and the
// threshold it breached, for UI and audit consumption.
type BreachedCheckpoint struct {
	CheckpointType    string
	WindBreach        bool
	VisibilityBreach  bool
	CeilingBreach     bool
	ObservedWindSpeed float64
	ObservedVisibility float64
	ObservedCeiling    *float64
	Threshold          db.TrainingThreshold
}

// Result is one flight's classification outcome.
type Result struct {
	FlightID            int64
	WeatherStatus       string
	Reason              string
	BreachedCheckpoints []BreachedCheckpoint
	HoursUntilDeparture float64
}

// Classifier evaluates flights against training thresholds.
type Classifier struct {
	flights    *repositories.FlightRepository
	students   *repositories.StudentRepository
	thresholds *repositories.ThresholdRepository
	snapshots  *repositories.WeatherSnapshotRepository
	metrics    *observability.Metrics
	horizon    time.Duration
}

// NewClassifier constructs a Classifier. horizon is the auto-reschedule
// look-ahead to departure (rescheduleHorizonHours, default 72h).
func NewClassifier(
	flights *repositories.FlightRepository,
	students *repositories.StudentRepository,
	thresholds *repositories.ThresholdRepository,
	snapshots *repositories.WeatherSnapshotRepository,
	horizon time.Duration,
) *Classifier {
	return &Classifier{
		flights:    flights,
		students:   students,
		thresholds: thresholds,
		snapshots:  snapshots,
		metrics:    observability.GetMetrics(),
		horizon:    horizon,
	}
}

var requiredCheckpoints = []string{db.CheckpointDeparture, db.CheckpointArrival, db.CheckpointCorridor}

// Classify evaluates the given flights (already loaded) and writes back each
// flight's weatherStatus. Deterministic: identical inputs (flight +
// snapshots + threshold) produce identical outputs regardless of checkpoint
// evaluation order.
func (c *Classifier) Classify(ctx context.Context, flights []*db.Flight) ([]Result, error) {
	now := time.Now().UTC()
	results := make([]Result, 0, len(flights))

	for _, flight := range flights {
		result, err := c.classifyOne(ctx, flight, now)
		if err != nil {
			return results, fmt.Errorf("classify flight %d: %w", flight.ID, err)
		}
		results = append(results, result)
		c.metrics.ClassificationsTotal.WithLabelValues(result.WeatherStatus).Inc()

		if err := c.flights.UpdateWeatherStatus(ctx, flight.ID, result.WeatherStatus); err != nil {
			return results, fmt.Errorf("write back weather status for flight %d: %w", flight.ID, err)
		}
	}

	return results, nil
}

func (c *Classifier) classifyOne(ctx context.Context, flight *db.Flight, now time.Time) (Result, error) {
	student, err := c.students.GetByID(ctx, flight.StudentID)
	if err != nil {
		return Result{}, err
	}

	threshold, err := c.thresholds.GetByTrainingLevel(ctx, student.TrainingLevel)
	if err != nil {
		return Result{}, err
	}
	if threshold == nil {
		return Result{
			FlightID:            flight.ID,
			WeatherStatus:       db.WeatherStatusUnknown,
			Reason:              "threshold-not-found",
			HoursUntilDeparture: hoursUntil(flight.DepartureTime, now),
		}, nil
	}

	snapshotsByCheckpoint, err := c.snapshots.LatestPerCheckpointForFlight(ctx, flight.ID)
	if err != nil {
		return Result{}, err
	}

	var missing []string
	for _, cp := range requiredCheckpoints {
		if _, ok := snapshotsByCheckpoint[cp]; !ok {
			missing = append(missing, cp)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Result{
			FlightID:            flight.ID,
			WeatherStatus:       db.WeatherStatusUnknown,
			Reason:              fmt.Sprintf("missing checkpoints: %s", strings.Join(missing, ", ")),
			HoursUntilDeparture: hoursUntil(flight.DepartureTime, now),
		}, nil
	}

	var breaches []BreachedCheckpoint
	anyFail := false
	for _, cp := range requiredCheckpoints {
		snap := snapshotsByCheckpoint[cp]
		windBreach := snap.WindSpeed > threshold.MaxWindSpeed
		visBreach := snap.Visibility < threshold.MinVisibility
		var ceilingBreach bool
		var ceiling *float64
		if snap.Ceiling.Valid {
			c := snap.Ceiling.Float64
			ceiling = &c
			ceilingBreach = c < threshold.MinCeiling
		}

		if windBreach || visBreach || ceilingBreach {
			anyFail = true
			breaches = append(breaches, BreachedCheckpoint{
				CheckpointType:     cp,
				WindBreach:         windBreach,
				VisibilityBreach:   visBreach,
				CeilingBreach:      ceilingBreach,
				ObservedWindSpeed:  snap.WindSpeed,
				ObservedVisibility: snap.Visibility,
				ObservedCeiling:    ceiling,
				Threshold:          *threshold,
			})
		}
	}

	hoursUntilDeparture := hoursUntil(flight.DepartureTime, now)
	insideHorizon := hoursUntilDeparture < c.horizon.Hours()

	var status string
	switch {
	case !anyFail:
		status = db.WeatherStatusClear
	case insideHorizon:
		status = db.WeatherStatusAutoReschedule
	default:
		status = db.WeatherStatusAdvisory
	}

	return Result{
		FlightID:            flight.ID,
		WeatherStatus:       status,
		Reason:              reasonFor(status, breaches),
		BreachedCheckpoints: breaches,
		HoursUntilDeparture:  hoursUntilDeparture,
	}, nil
}

func reasonFor(status string, breaches []BreachedCheckpoint) string {
	if status == db.WeatherStatusClear {
		return "all checkpoints within threshold"
	}
	var parts []string
	for _, b := range breaches {
		var channels []string
		if b.WindBreach {
			channels = append(channels, "wind")
		}
		if b.VisibilityBreach {
			channels = append(channels, "visibility")
		}
		if b.CeilingBreach {
			channels = append(channels, "ceiling")
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", b.CheckpointType, strings.Join(channels, ",")))
	}
	return fmt.Sprintf("breached: %s", strings.Join(parts, "; "))
}

func hoursUntil(instant, now time.Time) float64 {
	return instant.Sub(now).Hours()
}
