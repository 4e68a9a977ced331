package ranking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aerovane/skedcore/internal/platform/config"
	"github.com/aerovane/skedcore/internal/platform/observability"
	"github.com/aerovane/skedcore/internal/scheduling/candidates"
)

// Ranker invokes the external ranking model and falls back deterministically
// when it is unavailable, times out, or returns something unparseable.
type Ranker struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	tunables   config.Tunables
	metrics    *observability.Metrics
}

// NewRanker constructs a Ranker. An empty endpoint or apiKey means "not
// configured".
func NewRanker(endpoint, apiKey string, tunables config.Tunables) *Ranker {
	return &Ranker{
		httpClient: &http.Client{},
		endpoint:   endpoint,
		apiKey:     apiKey,
		tunables:   tunables,
		metrics:    observability.GetMetrics(),
	}
}

type rankRequest struct {
	Prompt string `json:"prompt"`
}

type rankResponse struct {
	Text string `json:"text"`
}

// Rank sends the candidate set to the configured ranking endpoint and
// assembles the result, falling back to a deterministic ranking on
// any failure.
func (r *Ranker) Rank(ctx context.Context, set *candidates.Set, durationMin int) Result {
	start := time.Now()
	outcome := "ranked"
	defer func() {
		r.metrics.RankerRequestsTotal.WithLabelValues(outcome).Inc()
		r.metrics.RankerLatency.Observe(time.Since(start).Seconds())
	}()

	if len(set.Candidates) == 0 {
		outcome = "empty_candidates"
		return Result{Recommendations: []Recommendation{}, AIUnavailable: true, FallbackReason: "empty_candidates"}
	}

	if r.endpoint == "" || r.apiKey == "" {
		outcome = "not_configured"
		return Result{Recommendations: []Recommendation{}, Error: "ranker-not-configured"}
	}

	prompt := buildPrompt(set, durationMin, r.tunables.SearchWindowDays)

	callCtx, cancel := context.WithTimeout(ctx, r.tunables.RankerTimeout())
	defer cancel()

	text, err := r.invoke(callCtx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
			return r.assemble(set, fallback(set, "timeout"))
		}
		outcome = "error"
		return r.assemble(set, fallback(set, "error"))
	}

	recs, err := parseResponse(text)
	if err != nil {
		outcome = "parse_error"
		return r.assemble(set, fallback(set, "parse_error"))
	}

	return r.assemble(set, Result{Recommendations: recs})
}

func (r *Ranker) invoke(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(rankRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal rank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build rank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("rank request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read rank response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ranker returned status %d", resp.StatusCode)
	}

	var out rankResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		// Some ranker deployments return the raw text body rather than a
		// JSON envelope; fall back to treating the body itself as text.
		return string(respBody), nil
	}
	return out.Text, nil
}

// assemble resolves each recommendation's candidateIndex against the
// real candidate set, dropping unresolvable entries while preserving
// rank order.
func (r *Ranker) assemble(set *candidates.Set, result Result) Result {
	valid := make(map[int]bool, len(set.Candidates))
	for _, c := range set.Candidates {
		valid[c.SlotIndex] = true
	}

	filtered := make([]Recommendation, 0, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		if valid[rec.CandidateIndex] {
			filtered = append(filtered, rec)
		}
	}
	result.Recommendations = filtered
	return result
}
