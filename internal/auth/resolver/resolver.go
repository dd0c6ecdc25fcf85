package resolver

import (
	"context"

	"auth-bridge/internal/auth"
)

// Resolver determines which internal user a completed handshake
// belongs to. It is the ONLY place where durable identity-to-user
// mapping lives; the handshake core itself keeps no state.
type Resolver interface {
	Resolve(ctx context.Context, profile auth.Profile) (userID string, err error)
}
