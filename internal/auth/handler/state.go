package handler

import (
	"net/http"
	"time"

	"auth-bridge/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	stateCookieName = "__oauth_state"
	stateTTL        = 5 * time.Minute
)

// issueState mints a fresh anti-forgery token, stores it in a short
// lived cookie and returns it for embedding in the redirect URL. The
// cookie is the only state kept between the two handshake legs.
func issueState(c *gin.Context) string {
	state := utils.RandomString(32)

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateTTL.Seconds()),
	})

	return state
}

// expectedState returns the token issued at start, or "" when the
// cookie is missing or expired. Comparison happens in the adapter.
func expectedState(c *gin.Context) string {
	cookie, err := c.Request.Cookie(stateCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
