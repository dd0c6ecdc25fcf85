// Package issuer converts a verified identity into a signed session
// credential. It is the only place that touches signing key material.
package issuer

import (
	"context"
	"errors"
	"time"

	"auth-bridge/internal/auth"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the token issuance collaborator contract. Failures must
// surface as auth.IssuanceError so callers can tell "who you are"
// succeeded but "granting access" failed.
type Issuer interface {
	Issue(ctx context.Context, identity auth.Identity, profile auth.Profile) (string, error)
}

// JWTIssuer signs HS256 session tokens carrying the canonical identity
// id as subject.
type JWTIssuer struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewJWTIssuer(signingKey []byte, issuer string, ttl time.Duration) (*JWTIssuer, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("issuer: signing key is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTIssuer{
		signingKey: signingKey,
		issuer:     issuer,
		ttl:        ttl,
	}, nil
}

// Issue signs a session token for the given identity.
func (i *JWTIssuer) Issue(ctx context.Context, identity auth.Identity, profile auth.Profile) (string, error) {
	if identity.ID == "" {
		return "", &auth.IssuanceError{Err: errors.New("identity id is empty")}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": identity.ID,
		"iss": i.issuer,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
	}
	if profile.Email != "" {
		claims["email"] = profile.Email
	}
	if profile.DisplayName != "" {
		claims["name"] = profile.DisplayName
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return "", &auth.IssuanceError{Err: err}
	}

	return signed, nil
}
