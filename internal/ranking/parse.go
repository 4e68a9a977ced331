package ranking

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawRecommendation mirrors the ranker's required JSON object shape;
// pointer fields let parseResponse detect and drop entries missing any of
// {rank, candidateIndex, confidence, rationale}.
type rawRecommendation struct {
	Rank           *int     `json:"rank"`
	CandidateIndex *int     `json:"candidateIndex"`
	Confidence     *float64 `json:"confidence"`
	Rationale      *string  `json:"rationale"`
}

// parseResponse strips markdown fences, extracts the first JSON-array
// substring, and decodes it. Entries missing a required field are
// dropped; at most three are kept.
func parseResponse(body string) ([]Recommendation, error) {
	cleaned := stripMarkdownFences(body)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array found in ranker response")
	}
	jsonArray := cleaned[start : end+1]

	var raw []rawRecommendation
	if err := json.Unmarshal([]byte(jsonArray), &raw); err != nil {
		return nil, fmt.Errorf("decode ranker JSON array: %w", err)
	}

	var out []Recommendation
	for _, r := range raw {
		if r.Rank == nil || r.CandidateIndex == nil || r.Confidence == nil || r.Rationale == nil {
			continue
		}
		out = append(out, Recommendation{
			Rank:           *r.Rank,
			CandidateIndex: *r.CandidateIndex,
			Confidence:     int(*r.Confidence),
			Rationale:      *r.Rationale,
		})
		if len(out) == 3 {
			break
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no valid recommendations after filtering")
	}
	return out, nil
}

func stripMarkdownFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return s
}
