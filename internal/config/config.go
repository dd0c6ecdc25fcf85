package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	// AppOrigin is the frontend origin login popups post their result
	// back to. When empty, the callback responds with plain JSON.
	AppOrigin string `env:"APP_ORIGIN"`

	GitLab GitLabConfig
	GitHub GitHubConfig
	Google GoogleConfig

	IssuerName     string        `env:"TOKEN_ISSUER" envDefault:"auth-bridge"`
	IssuerKey      string        `env:"TOKEN_SIGNING_KEY"`
	IssuerTokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"1h"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	DatabaseDSN string `env:"DATABASE_DSN"`
}

type GitLabConfig struct {
	ClientID       string `env:"GITLAB_CLIENT_ID"`
	ClientSecret   string `env:"GITLAB_CLIENT_SECRET"`
	CallbackURL    string `env:"GITLAB_CALLBACK_URL"`
	BaseURL        string `env:"GITLAB_BASE_URL"`
	DisableRefresh bool   `env:"GITLAB_DISABLE_REFRESH"`
}

type GitHubConfig struct {
	ClientID     string `env:"GITHUB_CLIENT_ID"`
	ClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	CallbackURL  string `env:"GITHUB_CALLBACK_URL"`
}

type GoogleConfig struct {
	ClientID       string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret   string `env:"GOOGLE_CLIENT_SECRET"`
	CallbackURL    string `env:"GOOGLE_CALLBACK_URL"`
	DisableRefresh bool   `env:"GOOGLE_DISABLE_REFRESH"`
}

// Enabled reports whether the provider block is configured at all.
// Partially configured blocks are not skipped; the adapter constructor
// rejects them so misconfiguration fails loudly at startup.
func (c GitLabConfig) Enabled() bool {
	return c.ClientID != "" || c.ClientSecret != "" || c.CallbackURL != ""
}

func (c GitHubConfig) Enabled() bool {
	return c.ClientID != "" || c.ClientSecret != "" || c.CallbackURL != ""
}

func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" || c.ClientSecret != "" || c.CallbackURL != ""
}

// Load reads the environment, honoring a local .env file when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
