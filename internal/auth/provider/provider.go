package provider

import (
	"context"

	"auth-bridge/internal/auth"
)

// StartRequest carries what an adapter needs to build the
// authorization redirect. State and PKCE material are minted by the
// caller, which owns the cookie mechanics; the adapter only embeds
// them in the URL. Scopes, when set, override the provider defaults
// for this handshake.
type StartRequest struct {
	State         string
	CodeChallenge string
	Scopes        []string
}

// CompleteRequest carries the provider callback parameters together
// with the values issued at start. The two handshake legs are
// correlated only through these fields; no server-side state exists
// between them.
type CompleteRequest struct {
	Code          string
	State         string // echoed by the provider on callback
	ExpectedState string // issued at start
	CodeVerifier  string
}

// Provider is the contract every external identity provider must
// satisfy. Implementations return identity facts only and must not
// make authorization decisions or manage sessions.
type Provider interface {
	// Name returns the provider identifier (e.g. "gitlab", "google").
	Name() string

	// Start builds the authorization redirect for this handshake.
	Start(ctx context.Context, req StartRequest) (*auth.RedirectInstruction, error)

	// Complete validates the callback state, exchanges the
	// authorization code for provider credentials, fetches the raw
	// profile and returns the canonical response. A state mismatch
	// fails with auth.ErrStateMismatch before any network call.
	Complete(ctx context.Context, req CompleteRequest) (*auth.Response, error)
}
