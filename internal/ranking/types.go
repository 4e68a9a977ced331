// Package ranking implements the AI ranking adapter: prompt assembly,
// a timeout-bounded external call, response parsing, and a deterministic
// fallback.
package ranking

import "github.com/aerovane/skedcore/internal/scheduling/candidates"

// Recommendation is one ranked candidate reference.
type Recommendation struct {
	Rank           int
	CandidateIndex int
	Confidence     int
	Rationale      string
}

// Result is the outcome of one Rank call: either a non-empty ranked list,
// or a typed fallback/unavailable signal.
type Result struct {
	Recommendations []Recommendation
	AIUnavailable   bool
	FallbackReason  string // "empty_candidates" | "timeout" | "parse_error" | "error"
	Error           string // "ranker-not-configured"
}

// candidateContext is the per-candidate payload handed to the prompt
// builder.
type candidateContext struct {
	Index      int
	Instructor int64
	Aircraft   int64
	Start      string
	Confidence int
	DurationMin int
	Notes       string
}

func toContext(set *candidates.Set, durationMin int) []candidateContext {
	out := make([]candidateContext, 0, len(set.Candidates))
	for _, c := range set.Candidates {
		out = append(out, candidateContext{
			Index:       c.SlotIndex,
			Instructor:  c.InstructorID,
			Aircraft:    c.AircraftID,
			Start:       c.DepartureTime.Format("2006-01-02T15:04Z"),
			Confidence:  c.Confidence,
			DurationMin: durationMin,
			Notes:       c.Notes,
		})
	}
	return out
}
