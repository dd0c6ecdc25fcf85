package app

import (
	"context"
	"errors"
	"time"

	"auth-bridge/internal/auth/handler"
	"auth-bridge/internal/auth/issuer"
	"auth-bridge/internal/auth/provider"
	"auth-bridge/internal/auth/provider/github"
	"auth-bridge/internal/auth/provider/gitlab"
	"auth-bridge/internal/auth/provider/google"
	"auth-bridge/internal/auth/resolver"
	"auth-bridge/internal/config"
	"auth-bridge/internal/middleware"
	"auth-bridge/internal/session"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessionStore := session.NewRedisStore(infra.Redis.Client)
	identityResolver := resolver.NewDBResolver(infra.DB)

	tokenIssuer, err := issuer.NewJWTIssuer(
		[]byte(cfg.IssuerKey),
		cfg.IssuerName,
		cfg.IssuerTokenTTL,
	)
	if err != nil {
		return nil, nil, err
	}

	registry, err := buildRegistry(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	authHandler := handler.NewHandler(
		registry,
		tokenIssuer,
		identityResolver,
		sessionStore,
		cfg.AppOrigin,
	)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.RequireAuth(sessionStore))

	api.GET("/me", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"user_id": c.GetString(middleware.ContextUserID),
		})
	})

	return router, func() error {
		return infra.DB.Close()
	}, nil
}

// buildRegistry constructs an adapter per configured provider block.
// A partially configured block is a startup error, not a silently
// skipped provider.
func buildRegistry(ctx context.Context, cfg config.Config) (*provider.Registry, error) {
	var list []provider.Provider

	if cfg.GitLab.Enabled() {
		p, err := gitlab.New(gitlab.Config{
			ClientID:       cfg.GitLab.ClientID,
			ClientSecret:   cfg.GitLab.ClientSecret,
			CallbackURL:    cfg.GitLab.CallbackURL,
			BaseURL:        cfg.GitLab.BaseURL,
			DisableRefresh: cfg.GitLab.DisableRefresh,
		})
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if cfg.GitHub.Enabled() {
		p, err := github.New(github.Config{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			CallbackURL:  cfg.GitHub.CallbackURL,
		})
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if cfg.Google.Enabled() {
		discoveryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		p, err := google.New(discoveryCtx, google.Config{
			ClientID:       cfg.Google.ClientID,
			ClientSecret:   cfg.Google.ClientSecret,
			CallbackURL:    cfg.Google.CallbackURL,
			DisableRefresh: cfg.Google.DisableRefresh,
		})
		cancel()
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if len(list) == 0 {
		return nil, errors.New("no oauth providers configured")
	}

	return provider.NewRegistry(list...), nil
}
