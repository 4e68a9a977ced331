package config

import (
	"os"
	"testing"
	"time"
)

func TestDurationAccessors(t *testing.T) {
	tun := Defaults()

	if got, want := tun.RankerTimeout(), 5000*time.Millisecond; got != want {
		t.Errorf("RankerTimeout() = %v, want %v", got, want)
	}
	if got, want := tun.GatewayBaseBackoff(), 2000*time.Millisecond; got != want {
		t.Errorf("GatewayBaseBackoff() = %v, want %v", got, want)
	}
	if got, want := tun.GatewayMaxBackoff(), 8000*time.Millisecond; got != want {
		t.Errorf("GatewayMaxBackoff() = %v, want %v", got, want)
	}
	if got, want := tun.PipelineBudget(), 120*time.Second; got != want {
		t.Errorf("PipelineBudget() = %v, want %v", got, want)
	}
}

func TestLoadWithNoFileAppliesEnvOverlay(t *testing.T) {
	t.Setenv("SKEDCORE_MAX_CANDIDATES", "42")
	t.Setenv("SKEDCORE_AUTO_ACCEPT_CONFIDENCE_THRESHOLD", "")

	tun, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tun.MaxCandidates != 42 {
		t.Errorf("MaxCandidates = %d, want 42 (from env)", tun.MaxCandidates)
	}
	if tun.AutoAcceptConfidenceThreshold != Defaults().AutoAcceptConfidenceThreshold {
		t.Errorf("AutoAcceptConfidenceThreshold = %d, want default when env is empty", tun.AutoAcceptConfidenceThreshold)
	}
}

func TestLoadIgnoresMissingFile(t *testing.T) {
	tun, err := Load("/nonexistent/path/tunables.yaml")
	if err != nil {
		t.Fatalf("unexpected error for a missing file: %v", err)
	}
	if tun != Defaults() {
		t.Error("Load with a missing file should fall back to defaults")
	}
}

func TestLoadOverlaysYAMLFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "tunables-*.yaml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := f.WriteString("searchWindowDays: 10\n"); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	f.Close()

	tun, err := Load(f.Name())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tun.SearchWindowDays != 10 {
		t.Errorf("SearchWindowDays = %d, want 10 (from YAML)", tun.SearchWindowDays)
	}
}

func TestOverlayEnvIntIgnoresInvalidValue(t *testing.T) {
	dst := 7
	t.Setenv("SKEDCORE_TEST_INVALID", "not-a-number")
	overlayEnvInt(&dst, "SKEDCORE_TEST_INVALID")
	if dst != 7 {
		t.Errorf("dst = %d, want unchanged 7 when env value is not parseable", dst)
	}
}
