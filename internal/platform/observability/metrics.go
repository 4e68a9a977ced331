// Package observability provides metrics and tracing infrastructure for the
// scheduling pipeline.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all skedcore Prometheus metrics.
type Metrics struct {
	// HTTP / RPC metrics
	RPCRequestsTotal   *prometheus.CounterVec
	RPCRequestDuration *prometheus.HistogramVec

	// Pipeline run metrics
	PipelineRunsTotal    *prometheus.CounterVec
	PipelineStageLatency *prometheus.HistogramVec
	PipelineRunDuration  prometheus.Histogram

	// Forecast gateway metrics
	GatewayRequestsTotal *prometheus.CounterVec
	GatewayLatency       *prometheus.HistogramVec
	SnapshotsCreated     prometheus.Counter

	// Classifier metrics
	ClassificationsTotal *prometheus.CounterVec

	// Candidate generator metrics
	CandidatesGenerated prometheus.Histogram

	// Ranker metrics
	RankerRequestsTotal *prometheus.CounterVec
	RankerLatency       prometheus.Histogram

	// Decision & audit metrics
	ReschedulesTotal *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBErrors        *prometheus.CounterVec
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = initializeMetrics()
	})
	return globalMetrics
}

func initializeMetrics() *Metrics {
	m := &Metrics{}

	m.RPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skedcore",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total number of /rpc requests",
		},
		[]string{"method", "status"},
	)

	m.RPCRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skedcore",
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "/rpc request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	m.PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skedcore",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total pipeline runs by terminal status",
		},
		[]string{"status"},
	)

	m.PipelineStageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skedcore",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	m.PipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "skedcore",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Total pipeline run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 90, 120, 180},
		},
	)

	m.GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skedcore",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total forecast gateway requests by outcome",
		},
		[]string{"checkpoint", "outcome"}, // outcome: fetched|cached|synthetic|not_available
	)

	m.GatewayLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skedcore",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Forecast gateway request duration in seconds",
			Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"checkpoint"},
	)

	m.SnapshotsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "skedcore",
			Subsystem: "gateway",
			Name:      "snapshots_created_total",
			Help:      "Total weather snapshots appended",
		},
	)

	m.ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skedcore",
			Subsystem: "classifier",
			Name:      "results_total",
			Help:      "Total classification results by weather status",
		},
		[]string{"weather_status"},
	)

	m.CandidatesGenerated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "skedcore",
			Subsystem: "candidates",
			Name:      "generated_count",
			Help:      "Number of candidates generated per flight",
			Buckets:   []float64{0, 1, 3, 5, 8, 10, 15},
		},
	)

	m.RankerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skedcore",
			Subsystem: "ranker",
			Name:      "requests_total",
			Help:      "Total ranker invocations by outcome",
		},
		[]string{"outcome"}, // outcome: ranked|timeout|parse_error|error|not_configured|empty_candidates
	)

	m.RankerLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "skedcore",
			Subsystem: "ranker",
			Name:      "request_duration_seconds",
			Help:      "Ranker request duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	m.ReschedulesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skedcore",
			Subsystem: "decision",
			Name:      "reschedules_total",
			Help:      "Total reschedule actions recorded by type",
		},
		[]string{"action_type"},
	)

	m.DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skedcore",
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"table", "operation"},
	)

	m.DBErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skedcore",
			Subsystem: "database",
			Name:      "errors_total",
			Help:      "Total database errors",
		},
		[]string{"table", "operation"},
	)

	return m
}
