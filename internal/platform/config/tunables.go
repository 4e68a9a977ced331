// Package config loads the pipeline's tunable parameter set, layering
// optional YAML file values under environment-variable overrides, the
// same two-layer shape cmd/nysus overlays flags onto env.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Tunables is the full configurable parameter set of the pipeline.
type Tunables struct {
	AutoAcceptConfidenceThreshold int `yaml:"autoAcceptConfidenceThreshold"`
	RescheduleHorizonHours        int `yaml:"rescheduleHorizonHours"`
	SearchWindowDays              int `yaml:"searchWindowDays"`
	MinimumSpacingHours           int `yaml:"minimumSpacingHours"`
	OperatingStartHourUTC         int `yaml:"operatingStartHourUTC"`
	OperatingEndHourUTC           int `yaml:"operatingEndHourUTC"`
	DurationToleranceMinutes      int `yaml:"durationToleranceMinutes"`
	MaxCandidates                 int `yaml:"maxCandidates"`
	GatewayAttempts                int `yaml:"gatewayAttempts"`
	GatewayBaseBackoffMs           int `yaml:"gatewayBaseBackoffMs"`
	GatewayMaxBackoffMs             int `yaml:"gatewayMaxBackoffMs"`
	RankerTimeoutMs                int `yaml:"rankerTimeoutMs"`
	PipelineBudgetSeconds           int `yaml:"pipelineBudgetSeconds"`
	MaxParallelFlights               int `yaml:"maxParallelFlights"`
}

// Defaults returns the parameter set at its operational defaults.
func Defaults() Tunables {
	return Tunables{
		AutoAcceptConfidenceThreshold: 80,
		RescheduleHorizonHours:        72,
		SearchWindowDays:              7,
		MinimumSpacingHours:           6,
		OperatingStartHourUTC:         6,
		OperatingEndHourUTC:           18,
		DurationToleranceMinutes:      5,
		MaxCandidates:                 15,
		GatewayAttempts:               4,
		GatewayBaseBackoffMs:          2000,
		GatewayMaxBackoffMs:           8000,
		RankerTimeoutMs:               5000,
		PipelineBudgetSeconds:         120,
		MaxParallelFlights:            16,
	}
}

// Load reads defaults, overlays an optional YAML file (if path is
// non-empty and exists), then overlays environment variables.
func Load(path string) (Tunables, error) {
	t := Defaults()

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, &t); err != nil {
				return t, err
			}
		}
	}

	overlayEnvInt(&t.AutoAcceptConfidenceThreshold, "SKEDCORE_AUTO_ACCEPT_CONFIDENCE_THRESHOLD")
	overlayEnvInt(&t.RescheduleHorizonHours, "SKEDCORE_RESCHEDULE_HORIZON_HOURS")
	overlayEnvInt(&t.SearchWindowDays, "SKEDCORE_SEARCH_WINDOW_DAYS")
	overlayEnvInt(&t.MinimumSpacingHours, "SKEDCORE_MINIMUM_SPACING_HOURS")
	overlayEnvInt(&t.OperatingStartHourUTC, "SKEDCORE_OPERATING_START_HOUR_UTC")
	overlayEnvInt(&t.OperatingEndHourUTC, "SKEDCORE_OPERATING_END_HOUR_UTC")
	overlayEnvInt(&t.DurationToleranceMinutes, "SKEDCORE_DURATION_TOLERANCE_MINUTES")
	overlayEnvInt(&t.MaxCandidates, "SKEDCORE_MAX_CANDIDATES")
	overlayEnvInt(&t.GatewayAttempts, "SKEDCORE_GATEWAY_ATTEMPTS")
	overlayEnvInt(&t.GatewayBaseBackoffMs, "SKEDCORE_GATEWAY_BASE_BACKOFF_MS")
	overlayEnvInt(&t.GatewayMaxBackoffMs, "SKEDCORE_GATEWAY_MAX_BACKOFF_MS")
	overlayEnvInt(&t.RankerTimeoutMs, "SKEDCORE_RANKER_TIMEOUT_MS")
	overlayEnvInt(&t.PipelineBudgetSeconds, "SKEDCORE_PIPELINE_BUDGET_SECONDS")
	overlayEnvInt(&t.MaxParallelFlights, "SKEDCORE_MAX_PARALLEL_FLIGHTS")

	return t, nil
}

func overlayEnvInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// RankerTimeout returns RankerTimeoutMs as a time.Duration.
func (t Tunables) RankerTimeout() time.Duration {
	return time.Duration(t.RankerTimeoutMs) * time.Millisecond
}

// GatewayBaseBackoff returns GatewayBaseBackoffMs as a time.Duration.
func (t Tunables) GatewayBaseBackoff() time.Duration {
	return time.Duration(t.GatewayBaseBackoffMs) * time.Millisecond
}

// GatewayMaxBackoff returns GatewayMaxBackoffMs as a time.Duration.
func (t Tunables) GatewayMaxBackoff() time.Duration {
	return time.Duration(t.GatewayMaxBackoffMs) * time.Millisecond
}

// PipelineBudget returns PipelineBudgetSeconds as a time.Duration.
func (t Tunables) PipelineBudget() time.Duration {
	return time.Duration(t.PipelineBudgetSeconds) * time.Second
}
