package weather

import (
	"testing"
	"time"
)

func TestConfidenceHorizonFor(t *testing.T) {
	tests := []struct {
		name     string
		leadTime time.Duration
		want     int
	}{
		{"well inside 24h", 10 * time.Hour, 24},
		{"exactly 24h rounds up", 24 * time.Hour, 48},
		{"between 24h and 72h", 50 * time.Hour, 48},
		{"exactly 72h rounds up", 72 * time.Hour, 72},
		{"beyond 72h", 100 * time.Hour, 72},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confidenceHorizonFor(tt.leadTime); got != tt.want {
				t.Errorf("confidenceHorizonFor(%v) = %d, want %d", tt.leadTime, got, tt.want)
			}
		})
	}
}

func TestNormalizeConvertsWindAndCeiling(t *testing.T) {
	bucket := upstreamHourBucket{
		TimeUTC:       time.Now(),
		WindKPH:       18.52,
		VisibilityMi:  9,
		CloudCoverPct: 40,
		Conditions:    "broken clouds",
	}

	f := normalize(bucket, time.Now().Add(10*time.Hour), "token-123")

	if f.WindSpeed < 9 || f.WindSpeed > 11 {
		t.Errorf("WindSpeed = %v, want roughly 10 knots (18.52kph)", f.WindSpeed)
	}
	if f.Ceiling == nil {
		t.Fatal("Ceiling should be set for cloud cover >= 10%")
	}
	if *f.Ceiling != 6000 {
		t.Errorf("Ceiling = %v, want 6000 (10000 - 40*100)", *f.Ceiling)
	}
	if f.RevalidationToken != "token-123" {
		t.Errorf("RevalidationToken = %q, want token-123", f.RevalidationToken)
	}
	if f.Source != SourceLive {
		t.Errorf("Source = %q, want live", f.Source)
	}
}

func TestNormalizeNoCeilingBelowThreshold(t *testing.T) {
	bucket := upstreamHourBucket{CloudCoverPct: 5}
	f := normalize(bucket, time.Now(), "")
	if f.Ceiling != nil {
		t.Errorf("Ceiling = %v, want nil for cloud cover below 10%%", *f.Ceiling)
	}
}

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{9.4, 9},
		{9.5, 10},
		{-9.4, -9},
		{-9.5, -10},
	}
	for _, tt := range tests {
		if got := roundFloat(tt.in); got != tt.want {
			t.Errorf("roundFloat(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
