package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"validation", Validation("phone_number", "is required"), ErrValidation},
		{"not found", NotFound("payment %d not found", 7), ErrNotFound},
		{"invalid state", InvalidState("payment is completed"), ErrInvalidState},
		{"already exists", AlreadyExists("revenue stream exists"), ErrAlreadyExists},
		{"configuration", WrapConfiguration(errors.New("no rows"), "no fee for %s", "2br"), ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false", wrapped)
			}
			if errors.Is(wrapped, ErrNotFound) && tt.sentinel != ErrNotFound {
				t.Errorf("kind %s unexpectedly matched not found", KindOf(tt.err))
			}
		})
	}
}

func TestWrapConfigurationKeepsCause(t *testing.T) {
	err := WrapConfiguration(NotFound("fee config not found"), "no platform fee configured for %s", "2br")
	if KindOf(err) != KindConfiguration {
		t.Errorf("KindOf = %q, want configuration", KindOf(err))
	}
	if !errors.Is(err, ErrConfiguration) || !errors.Is(err, ErrNotFound) {
		t.Errorf("expected configuration wrapping not found, got %v", err)
	}
	if got := err.Error(); got != "no platform fee configured for 2br: fee config not found" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	err := fmt.Errorf("create payment: %w", Validation("phone_number", "is required"))
	if got := FieldOf(err); got != "phone_number" {
		t.Errorf("FieldOf = %q, want phone_number", got)
	}
	if got := err.Error(); got != "create payment: phone_number: is required" {
		t.Errorf("Error() = %q", got)
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("plain errors should have no kind")
	}
}

func TestIsUnitType(t *testing.T) {
	for _, ut := range UnitTypes {
		if !IsUnitType(ut) {
			t.Errorf("IsUnitType(%q) = false", ut)
		}
	}
	if IsUnitType("penthouse") {
		t.Error("IsUnitType(penthouse) = true")
	}
}
