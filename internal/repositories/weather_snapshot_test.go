package repositories

import (
	"testing"
	"time"
)

func TestClassifyStaleness(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		age       time.Duration
		want      Staleness
		wantWarn  bool
	}{
		{"fresh", 30 * time.Minute, StalenessFresh, false},
		{"acceptable", 3 * time.Hour, StalenessAcceptable, false},
		{"stale", 12 * time.Hour, StalenessStale, true},
		{"very stale", 48 * time.Hour, StalenessVeryStale, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warn := ClassifyStaleness(now.Add(-tt.age), now)
			if got != tt.want {
				t.Errorf("ClassifyStaleness(age=%v) = %q, want %q", tt.age, got, tt.want)
			}
			if warn != tt.wantWarn {
				t.Errorf("ClassifyStaleness(age=%v) warn = %v, want %v", tt.age, warn, tt.wantWarn)
			}
		})
	}
}

func TestClassifyStalenessBoundaries(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if got, _ := ClassifyStaleness(now.Add(-time.Hour), now); got != StalenessAcceptable {
		t.Errorf("age exactly 1h = %q, want acceptable (strict < boundary)", got)
	}
	if got, _ := ClassifyStaleness(now.Add(-24*time.Hour), now); got != StalenessVeryStale {
		t.Errorf("age exactly 24h = %q, want very-stale (strict < boundary)", got)
	}
}
