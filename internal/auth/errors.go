package auth

import (
	"errors"
	"fmt"
)

// ErrStateMismatch means the anti-forgery state echoed on the callback
// does not match the one issued at redirect. Treated as a potential
// CSRF attempt and surfaced as an authentication failure, never
// silently ignored.
var ErrStateMismatch = errors.New("oauth state mismatch")

// ConfigError means a required credential or URL was missing when the
// provider adapter was constructed. Fatal at startup, not recoverable
// per-request.
type ConfigError struct {
	Provider string
	Field    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s oauth config missing required field: %s", e.Provider, e.Field)
}

// ExchangeError means the provider rejected the authorization code or
// the token/profile fetch failed. Surfaced as an authentication
// failure; never retried by this layer.
type ExchangeError struct {
	Provider string
	Op       string // "exchange" or "profile"
	Err      error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// IssuanceError means the token issuance collaborator failed after a
// successful handshake: "who you are" succeeded but "granting access"
// did not. Kept distinct from authentication failures.
type IssuanceError struct {
	Err error
}

func (e *IssuanceError) Error() string {
	return fmt.Sprintf("token issuance failed: %v", e.Err)
}

func (e *IssuanceError) Unwrap() error { return e.Err }
