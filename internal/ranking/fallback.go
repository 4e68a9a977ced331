package ranking

import (
	"fmt"
	"sort"

	"github.com/aerovane/skedcore/internal/scheduling/candidates"
)

// fallback takes the top-three input candidates by descending confidence
// and synthesizes a deterministic rationale for each.
func fallback(set *candidates.Set, reason string) Result {
	ordered := make([]candidates.Candidate, len(set.Candidates))
	copy(ordered, set.Candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})

	limit := len(ordered)
	if limit > 3 {
		limit = 3
	}

	recs := make([]Recommendation, 0, limit)
	for i, c := range ordered[:limit] {
		recs = append(recs, Recommendation{
			Rank:           i + 1,
			CandidateIndex: c.SlotIndex,
			Confidence:     c.Confidence,
			Rationale: fmt.Sprintf(
				"[Fallback: %s] instructor %d available at %s on aircraft %d. All constraints met.",
				reason, c.InstructorID, c.DepartureTime.Format("15:04"), c.AircraftID,
			),
		})
	}

	return Result{Recommendations: recs, FallbackReason: reason}
}
