package ranking

import (
	"testing"
	"time"

	"github.com/aerovane/skedcore/internal/scheduling/candidates"
)

func TestFallbackOrdersByConfidenceDescending(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	set := &candidates.Set{
		Candidates: []candidates.Candidate{
			{SlotIndex: 0, Confidence: 40, InstructorID: 1, AircraftID: 1, DepartureTime: now},
			{SlotIndex: 1, Confidence: 90, InstructorID: 2, AircraftID: 2, DepartureTime: now},
			{SlotIndex: 2, Confidence: 60, InstructorID: 3, AircraftID: 3, DepartureTime: now},
		},
	}

	result := fallback(set, "ranker unreachable")

	if len(result.Recommendations) != 3 {
		t.Fatalf("fallback() returned %d recommendations, want 3", len(result.Recommendations))
	}
	if result.Recommendations[0].CandidateIndex != 1 {
		t.Errorf("top recommendation candidate index = %d, want 1 (confidence 90)", result.Recommendations[0].CandidateIndex)
	}
	if result.Recommendations[0].Rank != 1 {
		t.Errorf("top recommendation rank = %d, want 1", result.Recommendations[0].Rank)
	}
	if result.FallbackReason != "ranker unreachable" {
		t.Errorf("FallbackReason = %q, want %q", result.FallbackReason, "ranker unreachable")
	}
}

func TestFallbackCapsAtThree(t *testing.T) {
	set := &candidates.Set{
		Candidates: []candidates.Candidate{
			{SlotIndex: 0, Confidence: 10},
			{SlotIndex: 1, Confidence: 20},
			{SlotIndex: 2, Confidence: 30},
			{SlotIndex: 3, Confidence: 40},
			{SlotIndex: 4, Confidence: 50},
		},
	}

	result := fallback(set, "not-configured")
	if len(result.Recommendations) != 3 {
		t.Errorf("fallback() returned %d recommendations, want 3", len(result.Recommendations))
	}
}

func TestFallbackFewerThanThreeCandidates(t *testing.T) {
	set := &candidates.Set{
		Candidates: []candidates.Candidate{
			{SlotIndex: 0, Confidence: 70},
		},
	}

	result := fallback(set, "timeout")
	if len(result.Recommendations) != 1 {
		t.Errorf("fallback() returned %d recommendations, want 1", len(result.Recommendations))
	}
}
