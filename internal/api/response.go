package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aerovane/skedcore/internal/platform/apierr"
)

// envelope is the `/rpc` response shape: a result-or-error object plus the
// correlation id tagging every downstream call this request made.
type envelope struct {
	Result        interface{} `json:"result,omitempty"`
	Error         string      `json:"error,omitempty"`
	CorrelationID string      `json:"correlationId"`
}

func writeResult(w http.ResponseWriter, correlationID string, result interface{}) {
	writeJSON(w, http.StatusOK, envelope{Result: result, CorrelationID: correlationID})
}

func writeError(w http.ResponseWriter, correlationID string, err error) {
	status := http.StatusInternalServerError
	var ae *apierr.Error
	if errors.As(err, &ae) {
		status = ae.Status
	}
	writeJSON(w, status, envelope{Error: err.Error(), CorrelationID: correlationID})
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
