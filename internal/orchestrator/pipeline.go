package orchestrator

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aerovane/skedcore/internal/decision"
	"github.com/aerovane/skedcore/internal/platform/config"
	"github.com/aerovane/skedcore/internal/platform/db"
	"github.com/aerovane/skedcore/internal/platform/logging"
	"github.com/aerovane/skedcore/internal/platform/observability"
	"github.com/aerovane/skedcore/internal/ranking"
	"github.com/aerovane/skedcore/internal/repositories"
	"github.com/aerovane/skedcore/internal/scheduling/candidates"
	"github.com/aerovane/skedcore/internal/scheduling/classifier"
	"github.com/aerovane/skedcore/internal/weather"
)

// RunSummary is the result of one pipeline run, mirroring what gets
// persisted as a Cron Run.
type RunSummary struct {
	CorrelationID    string
	Status           string
	StartedAt        time.Time
	EndedAt          time.Time
	DurationMs       int64
	SnapshotsCreated int
	FlightsAnalyzed  int
	ConflictsFound   int
	Rescheduled      int
	PendingReview    int
	Skipped          int
	Errors           int
	ErrorDetails     []string

	Classifications []classifier.Result
}

// Pipeline wires together the Forecast Gateway, Snapshot Store, Classifier,
// Candidate Generator, Ranker, and Decision & Audit components into one
// hourly run.
type Pipeline struct {
	flights    *repositories.FlightRepository
	snapshots  *repositories.WeatherSnapshotRepository
	cronRuns   *repositories.CronRunRepository
	notifs     *repositories.NotificationRepository
	gateway    *weather.Gateway
	classifier *classifier.Classifier
	generator  *candidates.Generator
	ranker     *ranking.Ranker
	recorder   *decision.Recorder
	tunables   config.Tunables
	logger     *logging.Logger
	metrics    *observability.Metrics
}

// NewPipeline constructs a Pipeline from its component dependencies.
func NewPipeline(
	flights *repositories.FlightRepository,
	snapshots *repositories.WeatherSnapshotRepository,
	cronRuns *repositories.CronRunRepository,
	notifs *repositories.NotificationRepository,
	gateway *weather.Gateway,
	classif *classifier.Classifier,
	generator *candidates.Generator,
	ranker *ranking.Ranker,
	recorder *decision.Recorder,
	tunables config.Tunables,
	logger *logging.Logger,
) *Pipeline {
	return &Pipeline{
		flights:    flights,
		snapshots:  snapshots,
		cronRuns:   cronRuns,
		notifs:     notifs,
		gateway:    gateway,
		classifier: classif,
		generator:  generator,
		ranker:     ranker,
		recorder:   recorder,
		tunables:   tunables,
		logger:     logger,
		metrics:    observability.GetMetrics(),
	}
}

// counters accumulates run-scoped aggregates under a single mutex; each
// stage's bounded worker pool writes through it concurrently.
type counters struct {
	mu               sync.Mutex
	snapshotsCreated int
	rescheduled      int
	pendingReview    int
	skipped          int
	errs             int
	errDetails       []string
}

func (c *counters) addSnapshot() {
	c.mu.Lock()
	c.snapshotsCreated++
	c.mu.Unlock()
}

func (c *counters) addError(detail string) {
	c.mu.Lock()
	c.errs++
	c.errDetails = append(c.errDetails, detail)
	c.mu.Unlock()
}

func (c *counters) addOutcome(kind string) {
	c.mu.Lock()
	switch kind {
	case "rescheduled":
		c.rescheduled++
	case "pending":
		c.pendingReview++
	case "skipped":
		c.skipped++
	}
	c.mu.Unlock()
}

// Run executes one pipeline invocation end to end: fetch weather,
// classify, and act on flights needing auto-reschedule.
func (p *Pipeline) Run(ctx context.Context, trigger Trigger, flightIDs []int64) (RunSummary, error) {
	correlationID := newCorrelationID(trigger)
	startedAt := time.Now().UTC()

	runCtx, cancel := context.WithTimeout(ctx, p.tunables.PipelineBudget())
	defer cancel()

	p.logger.Info(correlationID, "pipeline run started", logging.Fields{"trigger": trigger})

	c := &counters{}

	flights, err := p.loadFlights(runCtx, flightIDs)
	if err != nil {
		summary := p.terminal(correlationID, startedAt, fmt.Sprintf("failed to load flights: %v", err))
		if perr := p.persist(ctx, summary); perr != nil {
			p.logger.Error(correlationID, "failed to persist cron run", logging.Fields{"error": perr.Error()})
		}
		p.appendFailureNotification(ctx, summary)
		return summary, err
	}

	// Stage A: forecast ingestion.
	stageAStart := time.Now()
	p.runStageA(runCtx, flights, correlationID, c)
	p.metrics.PipelineStageLatency.WithLabelValues("ingestion").Observe(time.Since(stageAStart).Seconds())

	// Stage B: classification.
	stageBStart := time.Now()
	results, err := p.classifier.Classify(runCtx, flights)
	p.metrics.PipelineStageLatency.WithLabelValues("classification").Observe(time.Since(stageBStart).Seconds())
	if err != nil {
		c.addError(fmt.Sprintf("classification stage: %v", err))
	}

	conflicts := 0
	for _, r := range results {
		if r.WeatherStatus == db.WeatherStatusAdvisory || r.WeatherStatus == db.WeatherStatusAutoReschedule {
			conflicts++
		}
	}

	// Stage C: auto-rescheduling.
	stageCStart := time.Now()
	p.runStageC(runCtx, results, correlationID, c)
	p.metrics.PipelineStageLatency.WithLabelValues("reschedule").Observe(time.Since(stageCStart).Seconds())

	endedAt := time.Now().UTC()
	duration := endedAt.Sub(startedAt)

	status := db.RunStatusSuccess
	if c.errs > 0 {
		status = db.RunStatusPartial
	}

	summary := RunSummary{
		CorrelationID:    correlationID,
		Status:           status,
		StartedAt:        startedAt,
		EndedAt:          endedAt,
		DurationMs:       duration.Milliseconds(),
		SnapshotsCreated: c.snapshotsCreated,
		FlightsAnalyzed:  len(results),
		ConflictsFound:   conflicts,
		Rescheduled:      c.rescheduled,
		PendingReview:    c.pendingReview,
		Skipped:          c.skipped,
		Errors:           c.errs,
		ErrorDetails:     c.errDetails,
		Classifications:  results,
	}

	p.metrics.PipelineRunsTotal.WithLabelValues(status).Inc()
	p.metrics.PipelineRunDuration.Observe(duration.Seconds())

	if err := p.persist(runCtx, summary); err != nil {
		p.logger.Error(correlationID, "failed to persist cron run", logging.Fields{"error": err.Error()})
	}

	if status != db.RunStatusSuccess {
		p.appendFailureNotification(runCtx, summary)
	}

	p.logger.Info(correlationID, "pipeline run finished", logging.Fields{
		"status": status, "duration_ms": summary.DurationMs, "rescheduled": c.rescheduled,
	})

	return summary, nil
}

func (p *Pipeline) loadFlights(ctx context.Context, flightIDs []int64) ([]*db.Flight, error) {
	if len(flightIDs) > 0 {
		return p.flights.ListByIDs(ctx, flightIDs)
	}
	now := time.Now().UTC()
	return p.flights.ListScheduledInWindow(ctx, now, now.Add(7*24*time.Hour))
}

func (p *Pipeline) runStageA(ctx context.Context, flights []*db.Flight, correlationID string, c *counters) {
	worker := newPool(p.tunables.MaxParallelFlights)

	checkpoints := []string{db.CheckpointDeparture, db.CheckpointArrival, db.CheckpointCorridor}

	for _, flight := range flights {
		flight := flight
		worker.submit(func() error {
			for _, cp := range checkpoints {
				snap, err := p.gateway.FetchCheckpoint(ctx, flight, cp, correlationID)
				if err != nil {
					// No forecast available for this checkpoint: the
					// classifier treats it as missing, not a flight-level
					// failure.
					continue
				}
				if err := p.snapshots.Append(ctx, snap); err != nil {
					return fmt.Errorf("flight %d checkpoint %s: append snapshot: %w", flight.ID, cp, err)
				}
				c.addSnapshot()
				p.metrics.SnapshotsCreated.Inc()
			}
			return nil
		}, func(err error) {
			c.addError(fmt.Sprintf("flight %d forecast ingestion: %v", flight.ID, err))
		})
	}

	worker.wait()
}

func (p *Pipeline) runStageC(ctx context.Context, results []classifier.Result, correlationID string, c *counters) {
	worker := newPool(p.tunables.MaxParallelFlights)

	durationMinutesFor := func(flightID int64) int {
		flight, err := p.flights.GetByID(ctx, flightID)
		if err != nil || flight == nil {
			return 0
		}
		return int(flight.ArrivalTime.Sub(flight.DepartureTime).Minutes())
	}

	for _, result := range results {
		if result.WeatherStatus != db.WeatherStatusAutoReschedule {
			continue
		}
		result := result

		worker.submit(func() error {
			set, err := p.generator.Generate(ctx, result.FlightID)
			if err != nil {
				return fmt.Errorf("generate candidates: %w", err)
			}
			if set == nil || len(set.Candidates) == 0 {
				c.addOutcome("skipped")
				return nil
			}

			rankResult := p.ranker.Rank(ctx, set, durationMinutesFor(result.FlightID))
			if len(rankResult.Recommendations) == 0 {
				c.addOutcome("skipped")
				return nil
			}

			enriched := decision.EnrichRecommendations(set, rankResult.Recommendations)
			if len(enriched) == 0 {
				c.addOutcome("skipped")
				return nil
			}

			top := enriched[0]
			if top.Confidence >= p.tunables.AutoAcceptConfidenceThreshold {
				if _, err := p.recorder.RecordAutoRescheduleDecision(ctx, result.FlightID, top); err != nil {
					return fmt.Errorf("record auto-reschedule decision: %w", err)
				}
				c.addOutcome("rescheduled")
			} else {
				c.addOutcome("pending")
			}
			return nil
		}, func(err error) {
			c.addOutcome("skipped")
			c.addError(fmt.Sprintf("flight %d auto-reschedule: %v", result.FlightID, err))
		})
	}

	worker.wait()
}

func (p *Pipeline) persist(ctx context.Context, s RunSummary) error {
	details, err := json.Marshal(s.ErrorDetails)
	if err != nil {
		details = []byte("[]")
	}

	run := &db.CronRun{
		CorrelationID:    s.CorrelationID,
		Status:           s.Status,
		StartedAt:        s.StartedAt,
		EndedAt:          s.EndedAt,
		DurationMs:       s.DurationMs,
		SnapshotsCreated: s.SnapshotsCreated,
		FlightsAnalyzed:  s.FlightsAnalyzed,
		ConflictsFound:   s.ConflictsFound,
		Rescheduled:      s.Rescheduled,
		PendingReview:    s.PendingReview,
		Skipped:          s.Skipped,
		Errors:           s.Errors,
		ErrorDetails:     details,
	}
	return p.cronRuns.Create(ctx, run)
}

func (p *Pipeline) appendFailureNotification(ctx context.Context, s RunSummary) {
	message := failureMessage(s)
	if err := p.notifs.Create(ctx, &db.Notification{
		FlightID: sql.NullInt64{},
		Type:     db.NotificationTypeError,
		Severity: severityFor(s.Status),
		Message:  message,
	}); err != nil {
		p.logger.Error(s.CorrelationID, "failed to append failure notification", logging.Fields{"error": err.Error()})
	}
}

func severityFor(status string) string {
	if status == db.RunStatusError {
		return db.NotificationSeverityCritical
	}
	return db.NotificationSeverityWarning
}

func failureMessage(s RunSummary) string {
	if len(s.ErrorDetails) == 0 {
		return "pipeline run completed with unspecified errors"
	}
	if len(s.ErrorDetails) > 1 {
		return fmt.Sprintf("pipeline failure: %d errors recorded across stages", len(s.ErrorDetails))
	}
	return s.ErrorDetails[0]
}

func (p *Pipeline) terminal(correlationID string, startedAt time.Time, message string) RunSummary {
	endedAt := time.Now().UTC()
	s := RunSummary{
		CorrelationID: correlationID,
		Status:        db.RunStatusError,
		StartedAt:     startedAt,
		EndedAt:       endedAt,
		DurationMs:    endedAt.Sub(startedAt).Milliseconds(),
		ErrorDetails:  []string{message},
		Errors:        1,
	}
	p.metrics.PipelineRunsTotal.WithLabelValues(db.RunStatusError).Inc()
	return s
}
