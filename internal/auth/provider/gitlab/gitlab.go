// Package gitlab implements the GitLab OAuth2 provider. GitLab issues
// plain OAuth2 tokens (no id_token requirement), so the profile is
// fetched from the REST API after the code exchange.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"auth-bridge/internal/auth"
	"auth-bridge/internal/auth/provider"

	"golang.org/x/oauth2"
)

const (
	providerName = "gitlab"

	// DefaultBaseURL is used when no self-hosted instance is configured.
	DefaultBaseURL = "https://gitlab.com"
)

type Provider struct {
	oauthConfig *oauth2.Config
	baseURL     string
	http        *http.Client
}

// Config carries the externally loaded provider settings.
// DisableRefresh is accepted for config symmetry across providers;
// GitLab grants refresh tokens unconditionally and this adapter never
// surfaces them, so there is nothing to toggle.
type Config struct {
	ClientID       string
	ClientSecret   string
	CallbackURL    string
	BaseURL        string // empty means DefaultBaseURL
	DisableRefresh bool
}

// New validates the configuration and builds the adapter. Missing
// credentials fail here, at startup, rather than degrading at request
// time.
func New(cfg Config) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, &auth.ConfigError{Provider: providerName, Field: "clientId"}
	case cfg.ClientSecret == "":
		return nil, &auth.ConfigError{Provider: providerName, Field: "clientSecret"}
	case cfg.CallbackURL == "":
		return nil, &auth.ConfigError{Provider: providerName, Field: "callbackUrl"}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  baseURL + "/oauth/authorize",
			TokenURL: baseURL + "/oauth/token",
		},
		Scopes: []string{"read_user"},
	}

	return &Provider{
		oauthConfig: oauthCfg,
		baseURL:     baseURL,
		http:        &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// Start builds the authorization redirect with state and PKCE
// parameters embedded.
func (p *Provider) Start(ctx context.Context, req provider.StartRequest) (*auth.RedirectInstruction, error) {
	cfg := *p.oauthConfig
	if len(req.Scopes) > 0 {
		cfg.Scopes = req.Scopes
	}

	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("code_challenge", req.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	}

	return &auth.RedirectInstruction{
		URL:    cfg.AuthCodeURL(req.State, opts...),
		Status: http.StatusFound,
	}, nil
}

// Complete validates the callback state, exchanges the code, fetches
// the user's profile and returns the canonical response.
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

	raw, err := p.fetchProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, &auth.ExchangeError{Provider: providerName, Op: "profile", Err: err}
	}

	resp := auth.Transform(token.AccessToken, raw, provider.ParamsFromToken(token))
	return &resp, nil
}

// userPayload is the subset of GET /api/v4/user this adapter reads.
// GitLab ids are numeric; they are normalized to strings.
type userPayload struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func (p *Provider) fetchProfile(ctx context.Context, accessToken string) (auth.RawProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/v4/user", nil)
	if err != nil {
		return auth.RawProfile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return auth.RawProfile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return auth.RawProfile{}, fmt.Errorf("gitlab api error: status %d", resp.StatusCode)
	}

	var payload userPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return auth.RawProfile{}, fmt.Errorf("failed to decode user payload: %w", err)
	}
	if payload.ID == 0 {
		return auth.RawProfile{}, fmt.Errorf("gitlab user payload missing id")
	}

	raw := auth.RawProfile{
		ID:          strconv.FormatInt(payload.ID, 10),
		Provider:    providerName,
		Username:    payload.Username,
		DisplayName: payload.Name,
		AvatarURL:   payload.AvatarURL,
	}
	if payload.Email != "" {
		raw.Emails = []auth.Email{{Value: payload.Email}}
	}

	return raw, nil
}
