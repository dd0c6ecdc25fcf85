// Package handler is the provider-agnostic handshake orchestrator. It
// owns the two HTTP legs of the flow and the browser-side state
// (anti-forgery and PKCE cookies); everything provider-specific lives
// behind the provider.Provider interface.
package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"auth-bridge/internal/auth"
	"auth-bridge/internal/auth/issuer"
	"auth-bridge/internal/auth/provider"
	"auth-bridge/internal/auth/resolver"
	"auth-bridge/internal/logger"
	"auth-bridge/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionTTL = 24 * time.Hour

type Handler struct {
	providers    *provider.Registry
	issuer       issuer.Issuer
	resolver     resolver.Resolver
	sessionStore session.Store
	appOrigin    string
}

func NewHandler(
	registry *provider.Registry,
	tokenIssuer issuer.Issuer,
	identityResolver resolver.Resolver,
	sessionStore session.Store,
	appOrigin string,
) *Handler {
	return &Handler{
		providers:    registry,
		issuer:       tokenIssuer,
		resolver:     identityResolver,
		sessionStore: sessionStore,
		appOrigin:    appOrigin,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/auth/:provider/start", h.start)
	r.GET("/auth/:provider/handler/frame", h.frame)
	r.POST("/auth/logout", h.Logout)
}

// start begins a handshake: mint state and PKCE material, hand both to
// the adapter, and send the browser to the provider.
func (h *Handler) start(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state := issueState(c)
	_, codeChallenge := issuePKCE(c)

	req := provider.StartRequest{
		State:         state,
		CodeChallenge: codeChallenge,
	}
	if scope := c.Query("scope"); scope != "" {
		req.Scopes = strings.Fields(scope)
	}

	redirect, err := p.Start(c.Request.Context(), req)
	if err != nil {
		logger.Error("failed to build authorization redirect", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to start login",
		})
		return
	}

	c.Redirect(redirect.Status, redirect.URL)
}

// frame completes a handshake: validate the callback, exchange the
// code through the adapter, issue a session token and post the
// canonical response back to the opening window.
func (h *Handler) frame(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	// Provider-reported errors (user denied, expired request) restart
	// the flow rather than surfacing a server error.
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oauth callback missing code and error", map[string]any{
			"provider": providerName,
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "missing authorization code",
		})
		return
	}

	res, err := p.Complete(c.Request.Context(), provider.CompleteRequest{
		Code:          code,
		State:         c.Query("state"),
		ExpectedState: expectedState(c),
		CodeVerifier:  pkceVerifier(c),
	})
	if err != nil {
		h.failAuthentication(c, providerName, err)
		return
	}

	token, err := h.issuer.Issue(c.Request.Context(), res.Identity, res.Profile)
	if err != nil {
		logger.Error("token issuance failed", map[string]any{
			"provider": providerName,
			"identity": res.Identity.ID,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "token issuance failed",
		})
		return
	}

	userID, err := h.resolver.Resolve(c.Request.Context(), res.Profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to resolve user",
		})
		return
	}

	sessionID, err := session.GenerateID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create session",
		})
		return
	}

	now := time.Now()
	expiresAt := now.Add(sessionTTL)

	sess := session.Session{
		SessionID:  sessionID,
		UserID:     userID,
		IdentityID: res.Identity.ID,
		Provider:   providerName,
		CreatedAt:  now,
		ExpiresAt:  expiresAt,
	}
	if err := h.sessionStore.Create(c.Request.Context(), sess); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to persist session",
		})
		return
	}

	session.SetCookie(c.Writer, sessionID, expiresAt, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("login completed", map[string]any{
		"provider": providerName,
		"identity": res.Identity.ID,
		"user_id":  userID,
	})

	h.renderFrame(c, token, res)
}

// failAuthentication maps handshake failures to responses. A state
// mismatch and a rejected exchange are both authentication failures,
// never server errors.
func (h *Handler) failAuthentication(c *gin.Context, providerName string, err error) {
	var exchangeErr *auth.ExchangeError

	switch {
	case errors.Is(err, auth.ErrStateMismatch):
		logger.Warn("oauth state mismatch", map[string]any{
			"provider": providerName,
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
	case errors.As(err, &exchangeErr):
		logger.Warn("oauth exchange rejected", map[string]any{
			"provider": providerName,
			"op":       exchangeErr.Op,
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
	default:
		logger.Error("handshake failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
	}
}

func (h *Handler) Logout(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		// Best-effort: an already-gone session still logs out.
		_ = h.sessionStore.Delete(c.Request.Context(), cookie.Value)
	}

	session.ClearCookie(c.Writer, session.CookieOptions{
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	c.Status(http.StatusNoContent)
}
