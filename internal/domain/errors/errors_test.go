package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
		{"invalid credentials", ErrInvalidCredentials},
		{"empty cart", ErrEmptyCart},
		{"invalid item", ErrInvalidItem},
		{"invalid status", ErrInvalidStatus},
		{"invalid transition", ErrInvalidTransition},
		{"missing reference", ErrMissingReference},
		{"invalid session id", ErrInvalidSessionID},
		{"unsupported provider", ErrUnsupportedProvider},
		{"invalid product", ErrInvalidProduct},
		{"insufficient stock", ErrInsufficientStock},
		{"missing email", ErrMissingEmail},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("context: %w", tc.err)
			if !stdErrors.Is(wrapped, tc.err) {
				t.Fatalf("expected wrapped error to match: %v", tc.err)
			}
		})
	}
}

func TestConfigurationError(t *testing.T) {
	err := fmt.Errorf("start checkout: %w", ConfigurationError{Setting: "STRIPE_SECRET_KEY"})
	var cfgErr ConfigurationError
	if !stdErrors.As(err, &cfgErr) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if cfgErr.Error() != "server misconfigured: STRIPE_SECRET_KEY is not set" {
		t.Fatalf("unexpected message %q", cfgErr.Error())
	}
}

func TestProviderErrorMessage(t *testing.T) {
	withMessage := ProviderError{Provider: "stripe", StatusCode: 400, Message: "No such checkout.session"}
	if withMessage.Error() != "No such checkout.session" {
		t.Fatalf("expected provider message verbatim, got %q", withMessage.Error())
	}

	bare := ProviderError{Provider: "paymongo", StatusCode: 502}
	if bare.Error() != "paymongo request failed with status 502" {
		t.Fatalf("unexpected fallback message %q", bare.Error())
	}
}
