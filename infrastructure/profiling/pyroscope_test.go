package profiling

import (
	"testing"

	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
)

func TestStartPyroscope_DisabledByDefault(t *testing.T) {
	t.Setenv("ENABLE_CONTINUOUS_PROFILING", "")

	p, err := StartPyroscope("formfill", infralogger.NewNop())
	if err != nil {
		t.Fatalf("StartPyroscope: %v", err)
	}
	if p != nil {
		t.Fatal("expected nil profiler when disabled")
	}
	if stopErr := p.Stop(); stopErr != nil {
		t.Errorf("Stop on nil profiler: %v", stopErr)
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("FORMFILL_TEST_ENV", "")
	if got := envOr("FORMFILL_TEST_ENV", "fallback"); got != "fallback" {
		t.Errorf("envOr = %q, want fallback", got)
	}

	t.Setenv("FORMFILL_TEST_ENV", "set")
	if got := envOr("FORMFILL_TEST_ENV", "fallback"); got != "set" {
		t.Errorf("envOr = %q, want set", got)
	}
}
