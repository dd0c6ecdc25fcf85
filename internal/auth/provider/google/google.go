// Package google implements the Google OIDC provider. Identity facts
// come from the verified id token, so no userinfo call is needed after
// the code exchange.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"auth-bridge/internal/auth"
	"auth-bridge/internal/auth/provider"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const (
	providerName = "google"

	// DefaultIssuer is Google's public OIDC issuer.
	DefaultIssuer = "https://accounts.google.com"
)

type Provider struct {
	oauthConfig    *oauth2.Config
	verifier       *oidc.IDTokenVerifier
	disableRefresh bool
}

// Config carries the externally loaded provider settings. Issuer is
// overridable for tests against a fake discovery endpoint.
type Config struct {
	ClientID       string
	ClientSecret   string
	CallbackURL    string
	Issuer         string // empty means DefaultIssuer
	DisableRefresh bool
}

// New runs OIDC discovery against the issuer and builds the adapter.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, &auth.ConfigError{Provider: providerName, Field: "clientId"}
	case cfg.ClientSecret == "":
		return nil, &auth.ConfigError{Provider: providerName, Field: "clientSecret"}
	case cfg.CallbackURL == "":
		return nil, &auth.ConfigError{Provider: providerName, Field: "callbackUrl"}
	}

	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}

	oidcProvider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: cfg.ClientID,
	})

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes: []string{
			oidc.ScopeOpenID,
			"profile",
			"email",
		},
	}

	return &Provider{
		oauthConfig:    oauthCfg,
		verifier:       verifier,
		disableRefresh: cfg.DisableRefresh,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// Start builds the authorization redirect with state and PKCE
// parameters. Offline access is only requested when refresh tokens
// are enabled for this provider.
func (p *Provider) Start(ctx context.Context, req provider.StartRequest) (*auth.RedirectInstruction, error) {
	cfg := *p.oauthConfig
	if len(req.Scopes) > 0 {
		cfg.Scopes = req.Scopes
	}

	accessType := oauth2.AccessTypeOffline
	if p.disableRefresh {
		accessType = oauth2.AccessTypeOnline
	}

	url := cfg.AuthCodeURL(
		req.State,
		accessType,
		oauth2.SetAuthURLParam("code_challenge", req.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	return &auth.RedirectInstruction{
		URL:    url,
		Status: http.StatusFound,
	}, nil
}

// Complete validates the callback state, exchanges the code, verifies
// the id token and builds the canonical response from its claims.
func (p *Provider) Complete(ctx context.Context, req provider.CompleteRequest) (*auth.Response, error) {
	if req.State == "" || req.State != req.ExpectedState {
		return nil, auth.ErrStateMismatch
	}

	token, err := p.oauthConfig.Exchange(
		ctx,
		req.Code,
		oauth2.SetAuthURLParam("code_verifier", req.CodeVerifier),
	)
	if err != nil {
		return nil, &auth.ExchangeError{Provider: providerName, Op: "exchange", Err: err}
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, &auth.ExchangeError{
			Provider: providerName,
			Op:       "exchange",
			Err:      errors.New("google did not return id_token"),
		}
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, &auth.ExchangeError{Provider: providerName, Op: "profile", Err: err}
	}

	var claims struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, &auth.ExchangeError{Provider: providerName, Op: "profile", Err: err}
	}
	if claims.Subject == "" {
		return nil, &auth.ExchangeError{
			Provider: providerName,
			Op:       "profile",
			Err:      errors.New("google id_token missing sub claim"),
		}
	}

	raw := auth.RawProfile{
		ID:          claims.Subject,
		Provider:    providerName,
		DisplayName: claims.Name,
		AvatarURL:   claims.Picture,
	}
	if claims.Email != "" {
		raw.Emails = []auth.Email{{Value: claims.Email}}
	}

	resp := auth.Transform(token.AccessToken, raw, provider.ParamsFromToken(token))
	return &resp, nil
}
