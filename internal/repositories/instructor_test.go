package repositories

import (
	"testing"

	"github.com/aerovane/skedcore/internal/platform/db"
)

func TestCertificationsDecodesJSON(t *testing.T) {
	inst := &db.Instructor{Certifications: []byte(`["instrument", "multi-engine"]`)}

	certs, err := Certifications(inst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(certs) != 2 || certs[0] != "instrument" || certs[1] != "multi-engine" {
		t.Errorf("Certifications = %v, want [instrument multi-engine]", certs)
	}
}

func TestCertificationsEmptyReturnsNil(t *testing.T) {
	inst := &db.Instructor{}
	certs, err := Certifications(inst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if certs != nil {
		t.Errorf("Certifications = %v, want nil for an instructor with no stored certifications", certs)
	}
}

func TestCertificationsInvalidJSON(t *testing.T) {
	inst := &db.Instructor{Certifications: []byte(`not json`)}
	if _, err := Certifications(inst); err == nil {
		t.Error("Certifications should error on malformed JSON")
	}
}
