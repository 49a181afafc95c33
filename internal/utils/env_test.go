package utils

import (
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	if got := GetEnv("SPROUTLY_TEST_MISSING", "fallback", nil); got != "fallback" {
		t.Errorf("missing var = %q, want fallback", got)
	}
	t.Setenv("SPROUTLY_TEST_STR", "set")
	if got := GetEnv("SPROUTLY_TEST_STR", "fallback", nil); got != "set" {
		t.Errorf("set var = %q, want set", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	if got := GetEnvAsInt("SPROUTLY_TEST_MISSING", 3, nil); got != 3 {
		t.Errorf("missing var = %d, want 3", got)
	}
	t.Setenv("SPROUTLY_TEST_INT", "12")
	if got := GetEnvAsInt("SPROUTLY_TEST_INT", 3, nil); got != 12 {
		t.Errorf("set var = %d, want 12", got)
	}
	t.Setenv("SPROUTLY_TEST_INT", "not-a-number")
	if got := GetEnvAsInt("SPROUTLY_TEST_INT", 3, nil); got != 3 {
		t.Errorf("unparseable var = %d, want 3", got)
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	if got := GetEnvAsDuration("SPROUTLY_TEST_MISSING", time.Minute, nil); got != time.Minute {
		t.Errorf("missing var = %v, want 1m", got)
	}
	t.Setenv("SPROUTLY_TEST_DUR", "90s")
	if got := GetEnvAsDuration("SPROUTLY_TEST_DUR", time.Minute, nil); got != 90*time.Second {
		t.Errorf("set var = %v, want 90s", got)
	}
	t.Setenv("SPROUTLY_TEST_DUR", "soon")
	if got := GetEnvAsDuration("SPROUTLY_TEST_DUR", time.Minute, nil); got != time.Minute {
		t.Errorf("unparseable var = %v, want 1m", got)
	}
}
