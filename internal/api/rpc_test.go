package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aerovane/skedcore/internal/platform/logging"
)

func newTestServer() *Server {
	return &Server{logger: logging.New()}
}

func TestHandleRPCMalformedBody(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewBufferString("not json"))
	w := httptest.NewRecorder()

	s.HandleRPC(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if env.CorrelationID == "" {
		t.Error("response should carry a correlation id even on malformed input")
	}
}

func TestHandleRPCUnknownMethod(t *testing.T) {
	s := newTestServer()
	body, _ := json.Marshal(rpcRequest{Method: "doesNotExist"})
	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewBuffer(body))
	w := httptest.NewRecorder()

	s.HandleRPC(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestMethodsTableHasAllNineOperations(t *testing.T) {
	want := []string{
		"weatherPoll",
		"classifyFlights",
		"autoReschedule",
		"generateCandidateSlots",
		"generateRescheduleRecommendations",
		"recordManagerDecision",
		"getFlightRescheduleHistory",
		"getWeatherSnapshots",
		"getCronRuns",
	}
	if len(methods) != len(want) {
		t.Fatalf("methods table has %d entries, want %d", len(methods), len(want))
	}
	for _, m := range want {
		if _, ok := methods[m]; !ok {
			t.Errorf("methods table missing %q", m)
		}
	}
}
