package ranking

import "testing"

func TestStripMarkdownFences(t *testing.T) {
	in := "```json\n[{\"rank\":1}]\n```"
	want := "\n[{\"rank\":1}]\n"
	if got := stripMarkdownFences(in); got != want {
		t.Errorf("stripMarkdownFences() = %q, want %q", got, want)
	}
}

func TestParseResponseValid(t *testing.T) {
	body := "```json\n[{\"rank\":1,\"candidateIndex\":2,\"confidence\":85,\"rationale\":\"good fit\"}]\n```"

	recs, err := parseResponse(body)
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("parseResponse() returned %d recommendations, want 1", len(recs))
	}
	if recs[0].CandidateIndex != 2 || recs[0].Confidence != 85 {
		t.Errorf("parseResponse() = %+v", recs[0])
	}
}

func TestParseResponseDropsIncompleteEntries(t *testing.T) {
	body := `[{"rank":1,"candidateIndex":0,"confidence":90,"rationale":"ok"},{"rank":2}]`

	recs, err := parseResponse(body)
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("parseResponse() returned %d recommendations, want 1 (incomplete entry dropped)", len(recs))
	}
}

func TestParseResponseCapsAtThree(t *testing.T) {
	body := `[
		{"rank":1,"candidateIndex":0,"confidence":90,"rationale":"a"},
		{"rank":2,"candidateIndex":1,"confidence":80,"rationale":"b"},
		{"rank":3,"candidateIndex":2,"confidence":70,"rationale":"c"},
		{"rank":4,"candidateIndex":3,"confidence":60,"rationale":"d"}
	]`

	recs, err := parseResponse(body)
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("parseResponse() returned %d recommendations, want 3", len(recs))
	}
}

func TestParseResponseNoArray(t *testing.T) {
	_, err := parseResponse("not json at all")
	if err == nil {
		t.Error("parseResponse() expected error for input with no JSON array")
	}
}

func TestParseResponseAllIncomplete(t *testing.T) {
	_, err := parseResponse(`[{"rank":1}]`)
	if err == nil {
		t.Error("parseResponse() expected error when every entry is missing fields")
	}
}
