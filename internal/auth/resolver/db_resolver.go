package resolver

import (
	"context"
	"database/sql"
	"errors"

	"auth-bridge/internal/auth"
	"auth-bridge/internal/db"

	"github.com/google/uuid"
)

// DBResolver resolves completed handshakes against the user database:
// known (provider, provider_user_id) pairs map to their user, known
// emails gain a new provider link, and everything else creates a user.
type DBResolver struct {
	db *db.DB
}

func NewDBResolver(db *db.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) Resolve(ctx context.Context, profile auth.Profile) (string, error) {
	if profile.ID == "" || profile.Provider == "" {
		return "", errors.New("profile missing provider identity")
	}

	// 1. Identity lookup (provider + provider_user_id)
	var userID uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM public.identities
		WHERE provider = $1
		  AND provider_user_id = $2
	`,
		profile.Provider,
		profile.ID,
	).Scan(&userID)

	if err == nil {
		return userID.String(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	// 2. Email-based linking (existing user, new provider)
	if profile.Email != "" {
		err = r.db.QueryRowContext(ctx, `
			SELECT id
			FROM public.users
			WHERE email = $1
		`,
			profile.Email,
		).Scan(&userID)

		if err == nil {
			if err := r.link(ctx, userID, profile); err != nil {
				return "", err
			}
			return userID.String(), nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
	}

	// 3. Create user, then the identity mapping
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO public.users (email, display_name)
		VALUES (NULLIF($1, ''), NULLIF($2, ''))
		RETURNING id
	`,
		profile.Email,
		profile.DisplayName,
	).Scan(&userID)
	if err != nil {
		return "", err
	}

	if err := r.link(ctx, userID, profile); err != nil {
		return "", err
	}

	return userID.String(), nil
}

func (r *DBResolver) link(ctx context.Context, userID uuid.UUID, profile auth.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO public.identities (user_id, provider, provider_user_id, username)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (provider, provider_user_id) DO NOTHING
	`,
		userID,
		profile.Provider,
		profile.ID,
		profile.Username,
	)
	return err
}
