package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aerovane/skedcore/internal/platform/apierr"
)

func TestWriteResult(t *testing.T) {
	w := httptest.NewRecorder()
	writeResult(w, "corr-1", map[string]int{"n": 5})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.CorrelationID != "corr-1" {
		t.Errorf("CorrelationID = %q, want corr-1", env.CorrelationID)
	}
	if env.Error != "" {
		t.Errorf("Error = %q, want empty", env.Error)
	}
}

func TestWriteErrorUsesApierrStatus(t *testing.T) {
	w := httptest.NewRecorder()
	err := apierr.New(apierr.KindPreconditionViolated, "bad input", http.StatusBadRequest)

	writeError(w, "corr-2", err)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	var env envelope
	if decodeErr := json.NewDecoder(w.Body).Decode(&env); decodeErr != nil {
		t.Fatalf("decode: %v", decodeErr)
	}
	if env.Error != "bad input" {
		t.Errorf("Error = %q, want %q", env.Error, "bad input")
	}
}

func TestWriteErrorDefaultsToInternalServerError(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, "corr-3", errors.New("unexpected failure"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
