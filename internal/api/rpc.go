// Package api implements the inbound `/rpc` surface: a single JSON
// endpoint dispatching to the scheduling core's nine operations.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aerovane/skedcore/internal/decision"
	"github.com/aerovane/skedcore/internal/orchestrator"
	"github.com/aerovane/skedcore/internal/platform/apierr"
	"github.com/aerovane/skedcore/internal/platform/logging"
	"github.com/aerovane/skedcore/internal/platform/observability"
	"github.com/aerovane/skedcore/internal/ranking"
	"github.com/aerovane/skedcore/internal/repositories"
	"github.com/aerovane/skedcore/internal/scheduling/candidates"
	"github.com/aerovane/skedcore/internal/scheduling/classifier"
	"github.com/aerovane/skedcore/internal/weather"
)

// Server holds every component the RPC surface dispatches into.
type Server struct {
	flights    *repositories.FlightRepository
	snapshots  *repositories.WeatherSnapshotRepository
	cronRuns   *repositories.CronRunRepository
	gateway    *weather.Gateway
	classifier *classifier.Classifier
	generator  *candidates.Generator
	ranker     *ranking.Ranker
	recorder   *decision.Recorder
	pipeline   *orchestrator.Pipeline
	logger     *logging.Logger
	metrics    *observability.Metrics
}

// NewServer constructs a Server from its component dependencies.
func NewServer(
	flights *repositories.FlightRepository,
	snapshots *repositories.WeatherSnapshotRepository,
	cronRuns *repositories.CronRunRepository,
	gateway *weather.Gateway,
	classif *classifier.Classifier,
	generator *candidates.Generator,
	ranker *ranking.Ranker,
	recorder *decision.Recorder,
	pipeline *orchestrator.Pipeline,
	logger *logging.Logger,
) *Server {
	return &Server{
		flights:    flights,
		snapshots:  snapshots,
		cronRuns:   cronRuns,
		gateway:    gateway,
		classifier: classif,
		generator:  generator,
		ranker:     ranker,
		recorder:   recorder,
		pipeline:   pipeline,
		logger:     logger,
		metrics:    observability.GetMetrics(),
	}
}

// rpcRequest is the `/rpc` request envelope.
type rpcRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type rpcHandler func(*Server, *http.Request, json.RawMessage) (interface{}, error)

var methods = map[string]rpcHandler{
	"weatherPoll":                       handleWeatherPoll,
	"classifyFlights":                   handleClassifyFlights,
	"autoReschedule":                    handleAutoReschedule,
	"generateCandidateSlots":            handleGenerateCandidateSlots,
	"generateRescheduleRecommendations": handleGenerateRescheduleRecommendations,
	"recordManagerDecision":             handleRecordManagerDecision,
	"getFlightRescheduleHistory":        handleGetFlightRescheduleHistory,
	"getWeatherSnapshots":               handleGetWeatherSnapshots,
	"getCronRuns":                       handleGetCronRuns,
}

// HandleRPC implements the POST /rpc endpoint.
func (s *Server) HandleRPC(w http.ResponseWriter, r *http.Request) {
	correlationID := orchestrator.NewCorrelationID(orchestrator.TriggerManual)

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, correlationID, apierr.New(apierr.KindPreconditionViolated, "malformed request body", http.StatusBadRequest))
		return
	}

	handler, ok := methods[req.Method]
	if !ok {
		writeError(w, correlationID, apierr.New(apierr.KindPreconditionViolated, fmt.Sprintf("unknown method %q", req.Method), http.StatusBadRequest))
		return
	}

	s.logger.Info(correlationID, "rpc request", logging.Fields{"method": req.Method})

	result, err := handler(s, r, req.Params)
	if err != nil {
		s.logger.Error(correlationID, "rpc request failed", logging.Fields{"method": req.Method, "error": err.Error()})
		writeError(w, correlationID, err)
		return
	}

	writeResult(w, correlationID, result)
}
