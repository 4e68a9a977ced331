package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aerovane/skedcore/internal/decision"
	"github.com/aerovane/skedcore/internal/orchestrator"
	"github.com/aerovane/skedcore/internal/platform/apierr"
	"github.com/aerovane/skedcore/internal/platform/db"
	"github.com/aerovane/skedcore/internal/repositories"
	"github.com/aerovane/skedcore/internal/scheduling/candidates"
)

func decodeParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apierr.New(apierr.KindPreconditionViolated, "malformed params: "+err.Error(), http.StatusBadRequest)
	}
	return nil
}

func loadFlightSet(ctx context.Context, flights *repositories.FlightRepository, flightIDs []int64) ([]*db.Flight, error) {
	if len(flightIDs) > 0 {
		return flights.ListByIDs(ctx, flightIDs)
	}
	now := time.Now().UTC()
	return flights.ListScheduledInWindow(ctx, now, now.Add(7*24*time.Hour))
}

// handleWeatherPoll implements weatherPoll: ingest forecasts for the given
// (or default-window) flights and classify them.
func handleWeatherPoll(s *Server, r *http.Request, params json.RawMessage) (interface{}, error) {
	var in struct {
		FlightIDs []int64 `json:"flightIds"`
	}
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}

	ctx := r.Context()
	correlationID := orchestrator.NewCorrelationID(orchestrator.TriggerManual)

	flights, err := loadFlightSet(ctx, s.flights, in.FlightIDs)
	if err != nil {
		return nil, apierr.Wrap(err, apierr.KindTerminal, "load flights", http.StatusInternalServerError)
	}

	checkpoints := []string{db.CheckpointDeparture, db.CheckpointArrival, db.CheckpointCorridor}
	snapshotsCreated := 0
	for _, flight := range flights {
		for _, cp := range checkpoints {
			snap, err := s.gateway.FetchCheckpoint(ctx, flight, cp, correlationID)
			if err != nil {
				continue
			}
			if err := s.snapshots.Append(ctx, snap); err != nil {
				return nil, apierr.Wrap(err, apierr.KindTerminal, "append snapshot", http.StatusInternalServerError)
			}
			snapshotsCreated++
		}
	}

	results, err := s.classifier.Classify(ctx, flights)
	if err != nil {
		return nil, apierr.Wrap(err, apierr.KindPerFlightException, "classify flights", http.StatusInternalServerError)
	}

	classifications := make([]map[string]interface{}, 0, len(results))
	for _, res := range results {
		classifications = append(classifications, map[string]interface{}{
			"flightId":      res.FlightID,
			"weatherStatus": res.WeatherStatus,
		})
	}

	return map[string]interface{}{
		"snapshotsCreated": snapshotsCreated,
		"flightsEvaluated": len(flights),
		"classifications":  classifications,
	}, nil
}

// handleClassifyFlights implements classifyFlights: re-run classification
// against whatever snapshots already exist, with no forecast ingestion.
func handleClassifyFlights(s *Server, r *http.Request, params json.RawMessage) (interface{}, error) {
	var in struct {
		FlightIDs []int64 `json:"flightIds"`
	}
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}

	ctx := r.Context()
	flights, err := loadFlightSet(ctx, s.flights, in.FlightIDs)
	if err != nil {
		return nil, apierr.Wrap(err, apierr.KindTerminal, "load flights", http.StatusInternalServerError)
	}

	results, err := s.classifier.Classify(ctx, flights)
	if err != nil {
		return nil, apierr.Wrap(err, apierr.KindPerFlightException, "classify flights", http.StatusInternalServerError)
	}

	return map[string]interface{}{"results": results}, nil
}

// handleAutoReschedule implements autoReschedule: runs the full three-stage
// pipeline over the given (or default-window) flights.
func handleAutoReschedule(s *Server, r *http.Request, params json.RawMessage) (interface{}, error) {
	var in struct {
		FlightIDs    []int64 `json:"flightIds"`
		ForceExecute bool    `json:"forceExecute"`
	}
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}

	summary, err := s.pipeline.Run(r.Context(), orchestrator.TriggerManual, in.FlightIDs)
	if err != nil {
		return nil, apierr.Wrap(err, apierr.KindTerminal, "run pipeline", http.StatusInternalServerError)
	}

	advisories := 0
	for _, c := range summary.Classifications {
		if c.WeatherStatus == db.WeatherStatusAdvisory {
			advisories++
		}
	}

	return map[string]interface{}{
		"flightsProcessed":   summary.FlightsAnalyzed,
		"reschedulesCreated": summary.Rescheduled,
		"advisoriesIssued":   advisories,
		"correlationId":      summary.CorrelationID,
	}, nil
}

// handleGenerateCandidateSlots implements generateCandidateSlots.
func handleGenerateCandidateSlots(s *Server, r *http.Request, params json.RawMessage) (interface{}, error) {
	var in struct {
		FlightID int64 `json:"flightId"`
	}
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	if in.FlightID <= 0 {
		return nil, apierr.New(apierr.KindPreconditionViolated, "flightId must be positive", http.StatusBadRequest)
	}

	set, err := s.generator.Generate(r.Context(), in.FlightID)
	if err != nil {
		return nil, apierr.Wrap(err, apierr.KindTerminal, "generate candidate slots", http.StatusInternalServerError)
	}

	return map[string]interface{}{
		"originalFlightId":      set.OriginalFlightID,
		"originalDepartureTime": set.OriginalDepartureTime,
		"candidateSlots":        set.Candidates,
		"errorReason":           set.ErrorReason,
	}, nil
}

// handleGenerateRescheduleRecommendations implements
// generateRescheduleRecommendations: ranks a previously generated candidate
// set.
func handleGenerateRescheduleRecommendations(s *Server, r *http.Request, params json.RawMessage) (interface{}, error) {
	var in struct {
		CandidateSlotsResult candidates.Set `json:"candidateSlotsResult"`
		DurationMinutes      int            `json:"durationMinutes"`
	}
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}

	set := &in.CandidateSlotsResult

	result := s.ranker.Rank(r.Context(), set, in.DurationMinutes)
	enriched := decision.EnrichRecommendations(set, result.Recommendations)

	return map[string]interface{}{
		"recommendations": enriched,
		"aiUnavailable":   result.AIUnavailable,
		"fallbackReason":  result.FallbackReason,
		"error":           result.Error,
	}, nil
}

// handleRecordManagerDecision implements recordManagerDecision.
func handleRecordManagerDecision(s *Server, r *http.Request, params json.RawMessage) (interface{}, error) {
	var in struct {
		FlightID             int64                        `json:"flightId"`
		RecommendedSlotIndex int                          `json:"recommendedSlotIndex"`
		Decision             string                       `json:"decision"`
		ManagerName          string                       `json:"managerName"`
		Notes                string                       `json:"notes"`
		TopRecommendations   []decision.TopRecommendation `json:"topRecommendations"`
	}
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}

	outcome, err := s.recorder.RecordManagerDecision(r.Context(), decision.ManagerDecisionInput{
		FlightID:             in.FlightID,
		RecommendedSlotIndex: in.RecommendedSlotIndex,
		Decision:             in.Decision,
		ManagerName:          in.ManagerName,
		Notes:                in.Notes,
		TopRecommendations:   in.TopRecommendations,
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

// handleGetFlightRescheduleHistory implements getFlightRescheduleHistory.
func handleGetFlightRescheduleHistory(s *Server, r *http.Request, params json.RawMessage) (interface{}, error) {
	var in struct {
		FlightID int64 `json:"flightId"`
	}
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}

	entries, err := s.recorder.History(r.Context(), in.FlightID)
	if err != nil {
		return nil, apierr.Wrap(err, apierr.KindTerminal, "load reschedule history", http.StatusInternalServerError)
	}

	return map[string]interface{}{"entries": entries}, nil
}

// handleGetWeatherSnapshots implements getWeatherSnapshots.
func handleGetWeatherSnapshots(s *Server, r *http.Request, params json.RawMessage) (interface{}, error) {
	var in struct {
		FlightID       int64      `json:"flightId"`
		CheckpointType string     `json:"checkpointType"`
		StartDate      *time.Time `json:"startDate"`
		EndDate        *time.Time `json:"endDate"`
		Limit          int        `json:"limit"`
	}
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}

	limit := in.Limit
	if limit <= 0 || limit > 500 {
		limit = 500
	}

	filters := repositories.QueryFilters{
		FlightID:       in.FlightID,
		CheckpointType: in.CheckpointType,
		Limit:          limit,
	}
	if in.StartDate != nil {
		filters.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		filters.EndDate = *in.EndDate
	}

	snapshots, err := s.snapshots.Query(r.Context(), filters)
	if err != nil {
		return nil, apierr.Wrap(err, apierr.KindTerminal, "query weather snapshots", http.StatusInternalServerError)
	}

	flight, err := s.flights.GetByID(r.Context(), in.FlightID)
	if err != nil {
		return nil, apierr.Wrap(err, apierr.KindTerminal, "load flight", http.StatusInternalServerError)
	}

	return map[string]interface{}{
		"snapshots": snapshots,
		"flight":    flight,
	}, nil
}

// handleGetCronRuns implements getCronRuns.
func handleGetCronRuns(s *Server, r *http.Request, params json.RawMessage) (interface{}, error) {
	var in struct {
		Limit  int    `json:"limit"`
		Status string `json:"status"`
	}
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	limit := in.Limit
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	runs, totalCount, err := s.cronRuns.List(r.Context(), limit, in.Status)
	if err != nil {
		return nil, apierr.Wrap(err, apierr.KindTerminal, "list cron runs", http.StatusInternalServerError)
	}

	return map[string]interface{}{
		"runs":       runs,
		"totalCount": totalCount,
	}, nil
}
