package ranking

import (
	"fmt"
	"strings"
	"time"

	"github.com/aerovane/skedcore/internal/scheduling/candidates"
)

// buildPrompt assembles the flight context, first-15 candidate list, and
// ranking instructions.
func buildPrompt(set *candidates.Set, durationMin int, searchWindowDays int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Flight context:\n")
	fmt.Fprintf(&b, "- original_flight_id: %d\n", set.OriginalFlightID)
	fmt.Fprintf(&b, "- scheduled_datetime: %s\n", set.OriginalDepartureTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- duration_minutes: %d\n", durationMin)
	fmt.Fprintf(&b, "- reason: weather\n")
	fmt.Fprintf(&b, "- search_window_days: %d\n\n", searchWindowDays)

	ctxs := toContext(set, durationMin)
	limit := len(ctxs)
	if limit > 15 {
		limit = 15
	}

	fmt.Fprintf(&b, "Candidates:\n")
	for _, c := range ctxs[:limit] {
		fmt.Fprintf(&b, "- index=%d instructor=%d aircraft=%d start=%s confidence=%d duration_minutes=%d notes=%q\n",
			c.Index, c.Instructor, c.Aircraft, c.Start, c.Confidence, c.DurationMin, c.Notes)
	}

	b.WriteString("\nInstructions:\n")
	b.WriteString("Rank the candidates above considering: instructor continuity, time-of-day alignment with the original schedule, aircraft compatibility, the candidate's confidence signal, and any notable caveats in its notes.\n")
	b.WriteString("Respond with a bare JSON array (no surrounding prose or markdown fences) of objects shaped exactly as:\n")
	b.WriteString(`[{"rank": <int 1..3>, "candidateIndex": <int>, "confidence": <int 0..100>, "rationale": "<string>"}]` + "\n")

	return b.String()
}
