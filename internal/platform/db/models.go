package db

import (
	"database/sql"
	"time"
)

// Student is read-only reference data owned externally to the core.
type Student struct {
	ID            int64  `db:"id"`
	TrainingLevel string `db:"training_level"` // student | private | instrument
}

// Instructor is read-only reference data owned externally to the core.
type Instructor struct {
	ID             int64  `db:"id"`
	Certifications []byte `db:"certifications"` // JSON-encoded []string
}

// Aircraft is read-only reference data owned externally to the core.
type Aircraft struct {
	ID           int64  `db:"id"`
	Category     string `db:"category"`
	Availability bool   `db:"availability"`
}

// TrainingThreshold is read-only reference data, one row per training level.
type TrainingThreshold struct {
	TrainingLevel string  `db:"training_level"`
	MaxWindSpeed  float64 `db:"max_wind_speed"`
	MinVisibility float64 `db:"min_visibility"`
	MinCeiling    float64 `db:"min_ceiling"`
}

// Flight lifecycle and weather status enums.
const (
	FlightStatusScheduled   = "scheduled"
	FlightStatusRescheduled = "rescheduled"
	FlightStatusCompleted   = "completed"
	FlightStatusCancelled   = "cancelled"

	WeatherStatusUnknown        = "unknown"
	WeatherStatusClear          = "clear"
	WeatherStatusAdvisory       = "advisory"
	WeatherStatusAutoReschedule = "auto-reschedule"
)

// Flight is mutated only by the Decision & Audit component (status,
// rescheduled copies) and the classifier (weather_status); never deleted.
type Flight struct {
	ID              int64     `db:"id"`
	StudentID       int64     `db:"student_id"`
	InstructorID    int64     `db:"instructor_id"`
	AircraftID      int64     `db:"aircraft_id"`
	DepartureTime   time.Time `db:"departure_time"`
	ArrivalTime     time.Time `db:"arrival_time"`
	OriginCode      string    `db:"origin_code"`
	DestinationCode string    `db:"destination_code"`
	Status          string    `db:"status"`
	WeatherStatus   string    `db:"weather_status"`
}

// Checkpoint types evaluated per flight.
const (
	CheckpointDeparture = "departure"
	CheckpointArrival   = "arrival"
	CheckpointCorridor  = "corridor"
)

// WeatherSnapshot is append-only; never mutated.
type WeatherSnapshot struct {
	ID                int64           `db:"id"`
	FlightID          int64           `db:"flight_id"`
	CheckpointType    string          `db:"checkpoint_type"`
	LocationCode      string          `db:"location_code"`
	ForecastInstant   time.Time       `db:"forecast_instant"`
	WindSpeed         float64         `db:"wind_speed"`
	Visibility        float64         `db:"visibility"`
	Ceiling           sql.NullFloat64 `db:"ceiling"` // null = unlimited
	Conditions        string          `db:"conditions"`
	ConfidenceHorizon int             `db:"confidence_horizon_hours"`
	CorrelationID     string          `db:"correlation_id"`
	CreatedAt         time.Time       `db:"created_at"`
	RevalidationToken sql.NullString  `db:"revalidation_token"`
}

// Reschedule action enums.
const (
	ActionTypeAutoAccept   = "auto-accept"
	ActionTypeManualAccept = "manual-accept"
	ActionTypeManualReject = "manual-reject"

	DecisionSourceSystem  = "system"
	DecisionSourceManager = "manager"

	ActionStatusPending  = "pending"
	ActionStatusAccepted = "accepted"
	ActionStatusRejected = "rejected"
)

// RescheduleAction is append-only.
type RescheduleAction struct {
	ID                 int64         `db:"id"`
	OriginalFlightID   int64         `db:"original_flight_id"`
	NewFlightID        sql.NullInt64 `db:"new_flight_id"`
	ActionType         string        `db:"action_type"`
	DecisionSource     string        `db:"decision_source"`
	DecidingPrincipal  string        `db:"deciding_principal"`
	DecisionInstant    time.Time     `db:"decision_instant"`
	AIRationale        []byte        `db:"ai_rationale"` // JSON
	WeatherSnapshotRef sql.NullInt64 `db:"weather_snapshot_ref"`
	Notes              string        `db:"notes"`
	Status             string        `db:"status"`
}

// Notification severities and known type tags.
const (
	NotificationTypeAutoRescheduled = "auto-rescheduled"
	NotificationTypeError           = "error"

	NotificationSeverityInfo     = "info"
	NotificationSeverityWarning  = "warning"
	NotificationSeverityCritical = "critical"
)

// Notification is written by the Decision & Audit component and the
// Orchestrator (on run failure).
type Notification struct {
	ID        int64         `db:"id"`
	FlightID  sql.NullInt64 `db:"flight_id"`
	Type      string        `db:"type"`
	Severity  string        `db:"severity"`
	Message   string        `db:"message"`
	Read      bool          `db:"read"`
	CreatedAt time.Time     `db:"created_at"`
}

// Cron run status enums.
const (
	RunStatusSuccess = "success"
	RunStatusPartial = "partial"
	RunStatusError   = "error"
)

// CronRun records one pipeline execution.
type CronRun struct {
	ID               int64     `db:"id"`
	CorrelationID    string    `db:"correlation_id"`
	Status           string    `db:"status"`
	StartedAt        time.Time `db:"started_at"`
	EndedAt          time.Time `db:"ended_at"`
	DurationMs       int64     `db:"duration_ms"`
	SnapshotsCreated int       `db:"snapshots_created"`
	FlightsAnalyzed  int       `db:"flights_analyzed"`
	ConflictsFound   int       `db:"conflicts_found"`
	Rescheduled      int       `db:"rescheduled"`
	PendingReview    int       `db:"pending_review"`
	Skipped          int       `db:"skipped"`
	Errors           int       `db:"errors"`
	ErrorDetails     []byte    `db:"error_details"` // JSON []string
}
