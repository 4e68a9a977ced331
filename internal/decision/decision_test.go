package decision

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/aerovane/skedcore/internal/platform/apierr"
	"github.com/aerovane/skedcore/internal/platform/config"
)

func newTestRecorder() *Recorder {
	return NewRecorder(nil, nil, nil, nil, config.Defaults())
}

func TestRecordManagerDecisionRejectsInvalidFlightID(t *testing.T) {
	r := newTestRecorder()
	_, err := r.RecordManagerDecision(context.Background(), ManagerDecisionInput{
		FlightID:    0,
		Decision:    "accept",
		ManagerName: "chief instructor",
	})

	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apierr.Error, got %v", err)
	}
	if ae.Kind != apierr.KindPreconditionViolated {
		t.Errorf("Kind = %v, want %v", ae.Kind, apierr.KindPreconditionViolated)
	}
}

func TestRecordManagerDecisionRejectsInvalidDecision(t *testing.T) {
	r := newTestRecorder()
	_, err := r.RecordManagerDecision(context.Background(), ManagerDecisionInput{
		FlightID:    1,
		Decision:    "maybe",
		ManagerName: "chief instructor",
	})
	if err == nil {
		t.Fatal("expected error for an invalid decision value")
	}
}

func TestRecordManagerDecisionRequiresManagerName(t *testing.T) {
	r := newTestRecorder()
	_, err := r.RecordManagerDecision(context.Background(), ManagerDecisionInput{
		FlightID: 1,
		Decision: "reject",
	})
	if err == nil {
		t.Fatal("expected error when managerName is empty")
	}
}

func TestRecordAutoRescheduleDecisionRejectsBelowThreshold(t *testing.T) {
	tunables := config.Defaults()
	r := NewRecorder(nil, nil, nil, nil, tunables)

	_, err := r.RecordAutoRescheduleDecision(context.Background(), 1, TopRecommendation{
		Confidence: tunables.AutoAcceptConfidenceThreshold - 1,
	})

	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apierr.Error, got %v", err)
	}
	if ae.Status != 412 {
		t.Errorf("Status = %d, want 412", ae.Status)
	}
}

func TestActionTypeFor(t *testing.T) {
	if got := actionTypeFor("system"); got != "auto-accept" {
		t.Errorf("actionTypeFor(system) = %q, want auto-accept", got)
	}
	if got := actionTypeFor("manager"); got != "manual-accept" {
		t.Errorf("actionTypeFor(manager) = %q, want manual-accept", got)
	}
}

func TestAcceptRejectsEmptyRecommendations(t *testing.T) {
	r := newTestRecorder()
	_, err := r.accept(context.Background(), nil, ManagerDecisionInput{}, "manager", "x", "accepted", sql.NullInt64{})
	if err == nil {
		t.Fatal("expected error when topRecommendations is empty")
	}
}

func TestAcceptRejectsOutOfRangeSlotIndex(t *testing.T) {
	r := newTestRecorder()
	in := ManagerDecisionInput{
		RecommendedSlotIndex: 5,
		TopRecommendations:   []TopRecommendation{{Confidence: 90}},
	}
	_, err := r.accept(context.Background(), nil, in, "manager", "x", "accepted", sql.NullInt64{})
	if err == nil {
		t.Fatal("expected error when recommendedSlotIndex does not resolve")
	}
}
