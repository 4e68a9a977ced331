package classifier

import (
	"testing"
	"time"
)

func TestHoursUntil(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		instant time.Time
		want    float64
	}{
		{"30 hours ahead", now.Add(30 * time.Hour), 30},
		{"exact now", now, 0},
		{"in the past", now.Add(-2 * time.Hour), -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hoursUntil(tt.instant, now); got != tt.want {
				t.Errorf("hoursUntil() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReasonForClear(t *testing.T) {
	reason := reasonFor("clear", nil)
	if reason != "all checkpoints within threshold" {
		t.Errorf("reasonFor(clear) = %q", reason)
	}
}

func TestReasonForBreaches(t *testing.T) {
	breaches := []BreachedCheckpoint{
		{CheckpointType: "departure", WindBreach: true},
		{CheckpointType: "arrival", VisibilityBreach: true, CeilingBreach: true},
	}

	reason := reasonFor("advisory", breaches)
	want := "breached: departure (wind); arrival (visibility,ceiling)"
	if reason != want {
		t.Errorf("reasonFor() = %q, want %q", reason, want)
	}
}

func TestRequiredCheckpointsComplete(t *testing.T) {
	if len(requiredCheckpoints) != 3 {
		t.Fatalf("requiredCheckpoints has %d entries, want 3", len(requiredCheckpoints))
	}
	seen := make(map[string]bool)
	for _, cp := range requiredCheckpoints {
		seen[cp] = true
	}
	for _, cp := range []string{"departure", "arrival", "corridor"} {
		if !seen[cp] {
			t.Errorf("requiredCheckpoints missing %q", cp)
		}
	}
}

func TestNewClassifier(t *testing.T) {
	c := NewClassifier(nil, nil, nil, nil, 72*time.Hour)
	if c == nil {
		t.Fatal("NewClassifier() returned nil")
	}
	if c.horizon != 72*time.Hour {
		t.Errorf("horizon = %v, want 72h", c.horizon)
	}
}
