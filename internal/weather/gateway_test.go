package weather

import (
	"testing"
	"time"

	"github.com/aerovane/skedcore/internal/platform/db"
)

func testFlight() *db.Flight {
	return &db.Flight{
		ID:              42,
		OriginCode:      "KPAO",
		DestinationCode: "KSQL",
		DepartureTime:   time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC),
		ArrivalTime:     time.Date(2026, 8, 1, 15, 30, 0, 0, time.UTC),
	}
}

func TestResolveCheckpointDeparture(t *testing.T) {
	flight := testFlight()
	ref, err := resolveCheckpoint(flight, db.CheckpointDeparture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Location != flight.OriginCode || !ref.TargetInstant.Equal(flight.DepartureTime) {
		t.Errorf("resolveCheckpoint(departure) = %+v, want origin/departure", ref)
	}
}

func TestResolveCheckpointArrival(t *testing.T) {
	flight := testFlight()
	ref, err := resolveCheckpoint(flight, db.CheckpointArrival)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Location != flight.DestinationCode || !ref.TargetInstant.Equal(flight.ArrivalTime) {
		t.Errorf("resolveCheckpoint(arrival) = %+v, want destination/arrival", ref)
	}
}

func TestResolveCheckpointCorridor(t *testing.T) {
	flight := testFlight()
	ref, err := resolveCheckpoint(flight, db.CheckpointCorridor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Location != flight.OriginCode || !ref.TargetInstant.Equal(flight.DepartureTime) {
		t.Errorf("resolveCheckpoint(corridor) = %+v, want origin/departure", ref)
	}
}

func TestResolveCheckpointUnknown(t *testing.T) {
	if _, err := resolveCheckpoint(testFlight(), "bogus"); err == nil {
		t.Error("resolveCheckpoint with an unknown checkpoint type should error")
	}
}

func TestDecodeUpstreamMatchesHourBucket(t *testing.T) {
	target := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	body := []byte(`{
		"etag": "abc123",
		"hours": [
			{"time_utc": "2026-08-01T13:00:00Z", "wind_kph": 5, "visibility_mi": 10, "cloud_cover_pct": 0, "conditions": "clear"},
			{"time_utc": "2026-08-01T14:00:00Z", "wind_kph": 12, "visibility_mi": 8, "cloud_cover_pct": 20, "conditions": "partly cloudy"}
		]
	}`)

	bucket, etag, err := decodeUpstream(body, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if etag != "abc123" {
		t.Errorf("etag = %q, want abc123", etag)
	}
	if bucket.WindKPH != 12 || bucket.Conditions != "partly cloudy" {
		t.Errorf("bucket = %+v, want the 14:00 bucket", bucket)
	}
}

func TestDecodeUpstreamNoMatchingHour(t *testing.T) {
	target := time.Date(2026, 8, 1, 20, 0, 0, 0, time.UTC)
	body := []byte(`{"etag": "x", "hours": [{"time_utc": "2026-08-01T13:00:00Z"}]}`)

	if _, _, err := decodeUpstream(body, target); err == nil {
		t.Error("decodeUpstream should error when no hour bucket matches the target instant")
	}
}

func TestDecodeUpstreamInvalidJSON(t *testing.T) {
	if _, _, err := decodeUpstream([]byte("not json"), time.Now()); err == nil {
		t.Error("decodeUpstream should error on invalid JSON")
	}
}

func TestToSnapshotSetsNullableFields(t *testing.T) {
	flight := testFlight()
	ceiling := 5000.0
	f := Forecast{
		WindSpeed:         10,
		Visibility:        9,
		Ceiling:           &ceiling,
		Conditions:        "clear",
		ConfidenceHorizon: 24,
		RevalidationToken: "tok",
		Source:            SourceLive,
	}
	ref := checkpointRef{Location: "KPAO", TargetInstant: flight.DepartureTime}

	snap := toSnapshot(f, flight, db.CheckpointDeparture, ref, "corr-1")

	if !snap.Ceiling.Valid || snap.Ceiling.Float64 != 5000 {
		t.Errorf("Ceiling = %+v, want valid 5000", snap.Ceiling)
	}
	if !snap.RevalidationToken.Valid || snap.RevalidationToken.String != "tok" {
		t.Errorf("RevalidationToken = %+v, want valid tok", snap.RevalidationToken)
	}
	if snap.FlightID != flight.ID || snap.CorrelationID != "corr-1" {
		t.Errorf("snap = %+v, want flight/correlation wired through", snap)
	}
}

func TestToSnapshotLeavesNullableFieldsUnsetWhenAbsent(t *testing.T) {
	flight := testFlight()
	f := Forecast{Source: SourceSynthetic}
	ref := checkpointRef{Location: "KPAO", TargetInstant: flight.DepartureTime}

	snap := toSnapshot(f, flight, db.CheckpointDeparture, ref, "corr-2")

	if snap.Ceiling.Valid {
		t.Error("Ceiling should be invalid when Forecast.Ceiling is nil")
	}
	if snap.RevalidationToken.Valid {
		t.Error("RevalidationToken should be invalid when Forecast.RevalidationToken is empty")
	}
}

func TestReissueRestampsCorrelationAndClearsID(t *testing.T) {
	flight := testFlight()
	prior := &db.WeatherSnapshot{
		ID:            7,
		FlightID:      99,
		CheckpointType: db.CheckpointArrival,
		WindSpeed:     10,
		CorrelationID: "old-corr",
		CreatedAt:     time.Now(),
	}

	reissued := reissue(prior, flight, db.CheckpointDeparture, "new-corr")

	if reissued.ID != 0 {
		t.Errorf("ID = %d, want 0 for a reissued snapshot", reissued.ID)
	}
	if reissued.FlightID != flight.ID {
		t.Errorf("FlightID = %d, want %d", reissued.FlightID, flight.ID)
	}
	if reissued.CheckpointType != db.CheckpointDeparture {
		t.Errorf("CheckpointType = %q, want %q", reissued.CheckpointType, db.CheckpointDeparture)
	}
	if reissued.CorrelationID != "new-corr" {
		t.Errorf("CorrelationID = %q, want new-corr", reissued.CorrelationID)
	}
	if !reissued.CreatedAt.IsZero() {
		t.Error("CreatedAt should be reset to zero on reissue")
	}
	if reissued.WindSpeed != prior.WindSpeed {
		t.Errorf("WindSpeed = %v, want preserved %v", reissued.WindSpeed, prior.WindSpeed)
	}
}
