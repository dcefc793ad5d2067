package services_test

import (
	"errors"
	"strings"
	"testing"

	"subweave/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "asr_call", "split", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"asr_call", "split", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "translate", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected nil marker to default to transient, got %v", err)
	}
}

func TestRetryableClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"transient", services.Wrap(services.ErrTransient, "asr_call", "chunk", "timeout", nil), true},
		{"timeout", services.Wrap(services.ErrTimeout, "asr_call", "poll", "deadline", nil), true},
		{"external", services.Wrap(services.ErrExternalTool, "probe", "ffprobe", "exit 1", nil), true},
		{"validation", services.Wrap(services.ErrValidation, "translate", "batch", "bad input", nil), false},
		{"configuration", services.Wrap(services.ErrConfiguration, "init", "load", "missing key", nil), false},
		{"not found", services.Wrap(services.ErrNotFound, "probe", "open", "gone", nil), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := services.Retryable(tc.err); got != tc.want {
			t.Errorf("%s: Retryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFatalClassification(t *testing.T) {
	if !services.Fatal(services.Wrap(services.ErrValidation, "asr_call", "decode", "unsupported codec", nil)) {
		t.Fatal("expected validation error to be fatal")
	}
	if services.Fatal(services.Wrap(services.ErrTransient, "asr_call", "chunk", "reset", nil)) {
		t.Fatal("expected transient error to be non-fatal")
	}
	if services.Fatal(nil) {
		t.Fatal("expected nil to be non-fatal")
	}
}
