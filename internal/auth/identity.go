package auth

// RawProfile is the provider-defined user payload, decoded by each
// provider adapter into one shape the normalizer can consume. Every
// field except ID may be absent; the payload is untrusted input.
type RawProfile struct {
	ID          string
	Provider    string
	Username    string
	DisplayName string
	Emails      []Email
	AvatarURL   string
}

// Email is a single address entry in a raw payload. Kept as a struct
// because several providers attach flags (primary, verified) alongside
// the address itself.
type Email struct {
	Value string
}

// Photo is an avatar reference on a normalized profile.
type Photo struct {
	Value string `json:"value"`
}

// Profile is the provider-independent normalized identity shape.
// Optional fields stay absent on the wire rather than defaulting to
// empty strings, so consumers can tell "no email" from "empty email".
type Profile struct {
	ID          string   `json:"id"`
	Provider    string   `json:"provider"`
	Username    string   `json:"username,omitempty"`
	DisplayName string   `json:"displayName,omitempty"`
	Emails      []string `json:"emails,omitempty"`
	Photos      []Photo  `json:"photos,omitempty"`

	// Email is the primary address, derived by the transformer from
	// the first entry of Emails (or from id-token claims).
	Email string `json:"email,omitempty"`
}

// HandshakeParams is handshake-session metadata independent of the
// user's identity. ExpiresIn is a pointer so "provider didn't report
// expiry" stays distinct from "expires immediately".
type HandshakeParams struct {
	Scope     string
	ExpiresIn *int
	IDToken   string
}

// ProviderInfo is the credential material returned to the caller.
// It must never be logged in full.
type ProviderInfo struct {
	AccessToken      string `json:"accessToken"`
	Scope            string `json:"scope,omitempty"`
	ExpiresInSeconds *int   `json:"expiresInSeconds,omitempty"`
	IDToken          string `json:"idToken,omitempty"`
}

// Identity is the stable internal identity handed to the token issuer.
type Identity struct {
	ID string `json:"id"`
}

// Response is the canonical result of a completed handshake.
type Response struct {
	ProviderInfo ProviderInfo `json:"providerInfo"`
	Profile      Profile      `json:"profile"`
	Identity     Identity     `json:"identity"`
}

// RedirectInstruction tells the caller where to send the user's
// browser to begin the handshake. The URL carries the anti-forgery
// state token; no other secret state is embedded.
type RedirectInstruction struct {
	URL    string
	Status int
}
