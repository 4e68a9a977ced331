// Package decision implements the decision and audit component: the
// auto-accept gate, original-flight state transition, and the immutable
// reschedule-action log.
package decision

import (
	"time"

	"github.com/aerovane/skedcore/internal/ranking"
	"github.com/aerovane/skedcore/internal/scheduling/candidates"
)

// TopRecommendation is a ranking.Recommendation enriched with the resolved
// candidate slot data it references, the shape recordManagerDecision's
// topRecommendations parameter and the stored AI rationale both use.
type TopRecommendation struct {
	Rank           int       `json:"rank"`
	CandidateIndex int       `json:"candidateIndex"`
	Instructor     int64     `json:"instructor"`
	Aircraft       int64     `json:"aircraft"`
	DepartureTime  time.Time `json:"departureTime"`
	ArrivalTime    time.Time `json:"arrivalTime"`
	Confidence     int       `json:"confidence"`
	Rationale      string    `json:"rationale"`
}

// EnrichRecommendations joins a ranker result's bare recommendations back
// against the candidate set that produced them, resolving each
// candidateIndex into its slot data.
func EnrichRecommendations(set *candidates.Set, recs []ranking.Recommendation) []TopRecommendation {
	bySlot := make(map[int]candidates.Candidate, len(set.Candidates))
	for _, c := range set.Candidates {
		bySlot[c.SlotIndex] = c
	}

	out := make([]TopRecommendation, 0, len(recs))
	for _, r := range recs {
		c, ok := bySlot[r.CandidateIndex]
		if !ok {
			continue
		}
		out = append(out, TopRecommendation{
			Rank:           r.Rank,
			CandidateIndex: r.CandidateIndex,
			Instructor:     c.InstructorID,
			Aircraft:       c.AircraftID,
			DepartureTime:  c.DepartureTime,
			ArrivalTime:    c.ArrivalTime,
			Confidence:     r.Confidence,
			Rationale:      r.Rationale,
		})
	}
	return out
}

// ManagerDecisionInput is recordManagerDecision's parameter set.
type ManagerDecisionInput struct {
	FlightID             int64
	RecommendedSlotIndex int // indexes TopRecommendations, not CandidateIndex
	Decision             string // "accept" | "reject"
	ManagerName          string
	Notes                string
	TopRecommendations   []TopRecommendation
}

// Outcome is the result of a manager or auto-reschedule decision.
type Outcome struct {
	ActionID    int64
	Status      string
	Message     string
	NewFlightID *int64
}

// rationaleDoc is the stable top-level shape of the stored AI rationale
// blob. Parsing code must tolerate unknown keys and never fail history
// retrieval on a parse error.
type rationaleDoc struct {
	TopRecommendations []TopRecommendation `json:"topRecommendations"`
	SelectedIndex      *int                `json:"selectedIndex"`
	Decision           string              `json:"decision"`
	Notes              string              `json:"notes"`
}
