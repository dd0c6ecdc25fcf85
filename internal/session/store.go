package session

import (
	"context"
	"time"
)

// Session represents an authenticated browser session created after a
// completed handshake. It stores identity pointers only; credential
// material from the provider is never persisted here.
type Session struct {
	SessionID  string    // unique session identifier
	UserID     string    // references users.id
	IdentityID string    // canonical identity id from the handshake
	Provider   string    // provider that authenticated the user
	CreatedAt  time.Time // when the session was established
	ExpiresAt  time.Time // absolute expiry time
}

// Store defines how sessions are stored and retrieved.
// Implementations (e.g., Redis) must remain stateless and opaque.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
