package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists       = errors.New("already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmptyCart           = errors.New("cart has no items")
	ErrInvalidItem         = errors.New("invalid line item")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrMissingReference    = errors.New("session id or reference required")
	ErrInvalidSessionID    = errors.New("malformed provider session id")
	ErrUnsupportedProvider = errors.New("unsupported payment provider")
	ErrInvalidProduct      = errors.New("invalid product")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrMissingEmail        = errors.New("customer email required")
)

// ConfigurationError reports a setting the server needs but was started without.
type ConfigurationError struct {
	Setting string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("server misconfigured: %s is not set", e.Setting)
}

// ProviderError carries the payment provider's own rejection message.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s request failed with status %d", e.Provider, e.StatusCode)
	}
	return e.Message
}
