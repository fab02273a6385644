package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"newsdesk/internal/services"
)

func TestWrapTagsMarkerAndDetail(t *testing.T) {
	cause := errors.New("socket closed")
	err := services.Wrap(services.ErrTransient, "gemini", "generate", "request failed", cause)

	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	for _, fragment := range []string{"gemini", "generate", "request failed", "socket closed"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q missing fragment %q", err.Error(), fragment)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("nil marker should default to ErrTransient, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected generic detail, got %q", err.Error())
	}
}

func TestRateLimitErrorClassification(t *testing.T) {
	rpd := services.NewRateLimitError(services.RateLimitRPD, "gemini-2.5-pro")
	rpm := services.NewRateLimitError(services.RateLimitRPM, "gemini-2.0-flash")

	if !services.IsDailyLimit(rpd) {
		t.Fatal("RPD error should classify as daily limit")
	}
	if services.IsDailyLimit(rpm) {
		t.Fatal("RPM error should not classify as daily limit")
	}

	wrapped := fmt.Errorf("processing batch: %w", rpd)
	if !services.IsDailyLimit(wrapped) {
		t.Fatal("classification must survive wrapping")
	}
	unwrapped, ok := services.AsRateLimit(wrapped)
	if !ok || unwrapped.Model != "gemini-2.5-pro" {
		t.Fatalf("AsRateLimit lost the model: %v, %v", unwrapped, ok)
	}

	if services.IsDailyLimit(errors.New("plain")) {
		t.Fatal("plain errors are not rate limits")
	}
}
