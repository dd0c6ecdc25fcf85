// Package github implements the GitHub OAuth2 provider. GitHub does
// not issue id tokens, and the profile's email field is often empty,
// so a second API call lists the account's verified addresses.
package github

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
	"golang.org/x/oauth2/github"
)

const (
	providerName = "github"

	// DefaultAPIBaseURL is the public GitHub API host.
	DefaultAPIBaseURL = "https://api.github.com"
)

type Provider struct {
	oauthConfig *oauth2.Config
	apiBaseURL  string
	http        *http.Client
}

// Config carries the externally loaded provider settings. Endpoint
// overrides exist for GitHub Enterprise installs and for tests.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	APIBaseURL   string          // empty means DefaultAPIBaseURL
	Endpoint     oauth2.Endpoint // zero value means the public endpoints
}

func New(cfg Config) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, &auth.ConfigError{Provider: providerName, Field: "clientId"}
	case cfg.ClientSecret == "":
		return nil, &auth.ConfigError{Provider: providerName, Field: "clientSecret"}
	case cfg.CallbackURL == "":
		return nil, &auth.ConfigError{Provider: providerName, Field: "callbackUrl"}
	}

	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = github.Endpoint
	}
	apiBaseURL := cfg.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBaseURL: apiBaseURL,
		http:       &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// Start builds the authorization redirect. GitHub ignores PKCE
// parameters for web application flows, so only the state is embedded.
func (p *Provider) Start(ctx context.Context, req provider.StartRequest) (*auth.RedirectInstruction, error) {
	cfg := *p.oauthConfig
	if len(req.Scopes) > 0 {
		cfg.Scopes = req.Scopes
	}

	return &auth.RedirectInstruction{
		URL:    cfg.AuthCodeURL(req.State),
		Status: http.StatusFound,
	}, nil
}

// Complete validates the callback state, exchanges the code and builds
// the canonical response from the user and email API payloads.
func (p *Provider) Complete(ctx context.Context, req provider.CompleteRequest) (*auth.Response, error) {
	if req.State == "" || req.State != req.ExpectedState {
		return nil, auth.ErrStateMismatch
	}

	token, err := p.oauthConfig.Exchange(ctx, req.Code)
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

type userPayload struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type emailPayload struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *Provider) fetchProfile(ctx context.Context, accessToken string) (auth.RawProfile, error) {
	var payload userPayload
	if err := p.getJSON(ctx, accessToken, "/user", &payload); err != nil {
		return auth.RawProfile{}, err
	}
	if payload.ID == 0 {
		return auth.RawProfile{}, fmt.Errorf("github user payload missing id")
	}

	raw := auth.RawProfile{
		ID:          strconv.FormatInt(payload.ID, 10),
		Provider:    providerName,
		Username:    payload.Login,
		DisplayName: payload.Name,
		AvatarURL:   payload.AvatarURL,
	}

	raw.Emails = p.collectEmails(ctx, accessToken, payload.Email)
	return raw, nil
}

// collectEmails prefers the primary verified address from the email
// API, falling back to whatever the profile payload carried. The email
// listing is best-effort: accounts without the user:email scope still
// authenticate.
func (p *Provider) collectEmails(ctx context.Context, accessToken, profileEmail string) []auth.Email {
	var listed []emailPayload
	if err := p.getJSON(ctx, accessToken, "/user/emails", &listed); err == nil {
		var emails []auth.Email
		for _, e := range listed {
			if !e.Verified {
				continue
			}
			if e.Primary {
				emails = append([]auth.Email{{Value: e.Email}}, emails...)
			} else {
				emails = append(emails, auth.Email{Value: e.Email})
			}
		}
		if len(emails) > 0 {
			return emails
		}
	}

	if profileEmail != "" {
		return []auth.Email{{Value: profileEmail}}
	}
	return nil
}

func (p *Provider) getJSON(ctx context.Context, accessToken, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api error: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode github payload: %w", err)
	}
	return nil
}
