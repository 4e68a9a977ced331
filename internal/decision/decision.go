package decision

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/aerovane/skedcore/internal/platform/apierr"
	"github.com/aerovane/skedcore/internal/platform/config"
	"github.com/aerovane/skedcore/internal/platform/db"
	"github.com/aerovane/skedcore/internal/platform/observability"
	"github.com/aerovane/skedcore/internal/repositories"
)

// Recorder implements the Decision & Audit component's three operations.
type Recorder struct {
	flights   *repositories.FlightRepository
	snapshots *repositories.WeatherSnapshotRepository
	actions   *repositories.RescheduleActionRepository
	notifs    *repositories.NotificationRepository
	tunables  config.Tunables
	metrics   *observability.Metrics
}

// NewRecorder constructs a Recorder.
func NewRecorder(
	flights *repositories.FlightRepository,
	snapshots *repositories.WeatherSnapshotRepository,
	actions *repositories.RescheduleActionRepository,
	notifs *repositories.NotificationRepository,
	tunables config.Tunables,
) *Recorder {
	return &Recorder{
		flights:   flights,
		snapshots: snapshots,
		actions:   actions,
		notifs:    notifs,
		tunables:  tunables,
		metrics:   observability.GetMetrics(),
	}
}

// RecordManagerDecision records a training manager's accept/reject
// decision for a flight as a new reschedule action.
func (r *Recorder) RecordManagerDecision(ctx context.Context, in ManagerDecisionInput) (Outcome, error) {
	if in.FlightID <= 0 {
		return Outcome{}, apierr.New(apierr.KindPreconditionViolated, "flightId must be positive", 400)
	}
	if in.Decision != "accept" && in.Decision != "reject" {
		return Outcome{}, apierr.New(apierr.KindPreconditionViolated, "decision must be accept or reject", 400)
	}
	if in.ManagerName == "" {
		return Outcome{}, apierr.New(apierr.KindPreconditionViolated, "managerName is required", 400)
	}

	flight, err := r.flights.GetByID(ctx, in.FlightID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load flight %d: %w", in.FlightID, err)
	}
	if flight == nil {
		return Outcome{ActionID: -1, Status: "error", Message: "flight not found"}, nil
	}

	snapshotRef := r.auditSnapshotRef(ctx, in.FlightID)

	if in.Decision == "accept" {
		return r.accept(ctx, flight, in, db.DecisionSourceManager, in.ManagerName, db.ActionStatusAccepted, snapshotRef)
	}
	return r.reject(ctx, flight, in, snapshotRef)
}

// RecordAutoRescheduleDecision records a system auto-accept decision.
// Pre-condition: the top recommendation's confidence must meet the
// auto-accept threshold.
func (r *Recorder) RecordAutoRescheduleDecision(ctx context.Context, flightID int64, topRecommendation TopRecommendation) (Outcome, error) {
	if topRecommendation.Confidence < r.tunables.AutoAcceptConfidenceThreshold {
		return Outcome{}, apierr.New(apierr.KindPreconditionViolated,
			fmt.Sprintf("top recommendation confidence %d below auto-accept threshold %d", topRecommendation.Confidence, r.tunables.AutoAcceptConfidenceThreshold),
			412)
	}

	flight, err := r.flights.GetByID(ctx, flightID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load flight %d: %w", flightID, err)
	}
	if flight == nil {
		return Outcome{ActionID: -1, Status: "error", Message: "flight not found"}, nil
	}

	snapshotRef := r.auditSnapshotRef(ctx, flightID)

	in := ManagerDecisionInput{
		FlightID:             flightID,
		RecommendedSlotIndex: 0,
		Decision:             "accept",
		Notes:                "",
		TopRecommendations:   []TopRecommendation{topRecommendation},
	}

	outcome, err := r.accept(ctx, flight, in, db.DecisionSourceSystem, "auto-reschedule", db.ActionStatusPending, snapshotRef)
	if err != nil {
		return outcome, err
	}

	if err := r.notifs.Create(ctx, &db.Notification{
		FlightID: sql.NullInt64{Int64: flightID, Valid: true},
		Type:     db.NotificationTypeAutoRescheduled,
		Severity: db.NotificationSeverityInfo,
		Message:  fmt.Sprintf("Flight %d auto-rescheduled pending manager review (action %d)", flightID, outcome.ActionID),
	}); err != nil {
		return outcome, fmt.Errorf("append auto-reschedule notification: %w", err)
	}

	r.metrics.ReschedulesTotal.WithLabelValues(db.ActionTypeAutoAccept).Inc()
	return outcome, nil
}

func (r *Recorder) accept(ctx context.Context, flight *db.Flight, in ManagerDecisionInput, decisionSource, decidingPrincipal, status string, snapshotRef sql.NullInt64) (Outcome, error) {
	if len(in.TopRecommendations) == 0 {
		return Outcome{}, apierr.New(apierr.KindPreconditionViolated, "topRecommendations must be non-empty to accept", 400)
	}
	if in.RecommendedSlotIndex < 0 || in.RecommendedSlotIndex >= len(in.TopRecommendations) {
		return Outcome{}, apierr.New(apierr.KindPreconditionViolated, "recommendedSlotIndex does not resolve", 400)
	}
	selected := in.TopRecommendations[in.RecommendedSlotIndex]

	replacement := &db.Flight{
		StudentID:       flight.StudentID,
		InstructorID:    selected.Instructor,
		AircraftID:      selected.Aircraft,
		DepartureTime:   selected.DepartureTime,
		ArrivalTime:     selected.ArrivalTime,
		OriginCode:      flight.OriginCode,
		DestinationCode: flight.DestinationCode,
	}

	newFlightID, err := r.flights.CreateRescheduled(ctx, flight.ID, replacement)
	if err != nil {
		return Outcome{}, fmt.Errorf("create rescheduled flight for %d: %w", flight.ID, err)
	}

	selectedIdx := in.RecommendedSlotIndex
	rationale, err := json.Marshal(rationaleDoc{
		TopRecommendations: in.TopRecommendations,
		SelectedIndex:      &selectedIdx,
		Decision:           "accept",
		Notes:              in.Notes,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal accept rationale: %w", err)
	}

	action := &db.RescheduleAction{
		OriginalFlightID:   flight.ID,
		NewFlightID:        sql.NullInt64{Int64: newFlightID, Valid: true},
		ActionType:         actionTypeFor(decisionSource),
		DecisionSource:     decisionSource,
		DecidingPrincipal:  decidingPrincipal,
		DecisionInstant:    time.Now().UTC(),
		AIRationale:        rationale,
		WeatherSnapshotRef: snapshotRef,
		Notes:              in.Notes,
		Status:             status,
	}
	if err := r.actions.Create(ctx, action); err != nil {
		return Outcome{}, fmt.Errorf("create reschedule action: %w", err)
	}

	if decisionSource == db.DecisionSourceManager {
		r.metrics.ReschedulesTotal.WithLabelValues(db.ActionTypeManualAccept).Inc()
	}

	return Outcome{ActionID: action.ID, Status: status, Message: "accepted", NewFlightID: &newFlightID}, nil
}

func (r *Recorder) reject(ctx context.Context, flight *db.Flight, in ManagerDecisionInput, snapshotRef sql.NullInt64) (Outcome, error) {
	notes := in.Notes
	if notes == "" {
		notes = "No reason provided"
	}

	rationale, err := json.Marshal(rationaleDoc{
		TopRecommendations: in.TopRecommendations,
		SelectedIndex:      nil,
		Decision:           "reject",
		Notes:              notes,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal reject rationale: %w", err)
	}

	action := &db.RescheduleAction{
		OriginalFlightID:   flight.ID,
		ActionType:         db.ActionTypeManualReject,
		DecisionSource:     db.DecisionSourceManager,
		DecidingPrincipal:  in.ManagerName,
		DecisionInstant:    time.Now().UTC(),
		AIRationale:        rationale,
		WeatherSnapshotRef: snapshotRef,
		Notes:              notes,
		Status:             db.ActionStatusRejected,
	}
	if err := r.actions.Create(ctx, action); err != nil {
		return Outcome{}, fmt.Errorf("create reject action: %w", err)
	}

	r.metrics.ReschedulesTotal.WithLabelValues(db.ActionTypeManualReject).Inc()

	return Outcome{ActionID: action.ID, Status: db.ActionStatusRejected, Message: "rejected"}, nil
}

func actionTypeFor(decisionSource string) string {
	if decisionSource == db.DecisionSourceSystem {
		return db.ActionTypeAutoAccept
	}
	return db.ActionTypeManualAccept
}

// auditSnapshotRef fetches the most recent weather snapshot across all
// checkpoints for audit context.
func (r *Recorder) auditSnapshotRef(ctx context.Context, flightID int64) sql.NullInt64 {
	byCheckpoint, err := r.snapshots.LatestPerCheckpointForFlight(ctx, flightID)
	if err != nil || len(byCheckpoint) == 0 {
		return sql.NullInt64{}
	}

	var newest *db.WeatherSnapshot
	for _, s := range byCheckpoint {
		if newest == nil || s.CreatedAt.After(newest.CreatedAt) {
			newest = s
		}
	}
	if newest == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: newest.ID, Valid: true}
}

// HistoryEntry is one audit entry returned by History, with original/new
// flight departure instants denormalized for display.
type HistoryEntry struct {
	Action                 *db.RescheduleAction
	OriginalDepartureTime  time.Time
	NewDepartureTime       *time.Time
	SelectedConfidence     *int
}

// History joins reschedule actions with the original/new flights and
// surfaces the selected recommendation's confidence from the rationale
// blob, newest-first.
func (r *Recorder) History(ctx context.Context, flightID int64) ([]HistoryEntry, error) {
	actions, err := r.actions.History(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("load reschedule history for flight %d: %w", flightID, err)
	}

	out := make([]HistoryEntry, 0, len(actions))
	for _, a := range actions {
		entry := HistoryEntry{Action: a}

		if original, err := r.flights.GetByID(ctx, a.OriginalFlightID); err == nil && original != nil {
			entry.OriginalDepartureTime = original.DepartureTime
		}

		if a.NewFlightID.Valid {
			if nf, err := r.flights.GetByID(ctx, a.NewFlightID.Int64); err == nil && nf != nil {
				t := nf.DepartureTime
				entry.NewDepartureTime = &t
			}
		}

		var doc rationaleDoc
		if json.Unmarshal(a.AIRationale, &doc) == nil && doc.SelectedIndex != nil {
			idx := *doc.SelectedIndex
			if idx >= 0 && idx < len(doc.TopRecommendations) {
				c := doc.TopRecommendations[idx].Confidence
				entry.SelectedConfidence = &c
			}
		}
		// Parse errors are tolerated: history retrieval never fails on a
		// malformed rationale blob.

		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Action.DecisionInstant.After(out[j].Action.DecisionInstant)
	})

	return out, nil
}
