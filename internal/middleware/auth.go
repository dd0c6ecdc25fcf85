package middleware

import (
	"net/http"
	"time"

	"auth-bridge/internal/session"

	"github.com/gin-gonic/gin"
)

// ContextUserID is the gin context key carrying the authenticated
// user id.
const ContextUserID = "userID"

// RequireAuth guards routes behind a valid session cookie. Auth
// decisions are session-based and provider-agnostic; expired sessions
// are deleted on sight.
func RequireAuth(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Request.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		sess, err := store.Get(c.Request.Context(), cookie.Value)
		if err != nil || sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if time.Now().After(sess.ExpiresAt) {
			_ = store.Delete(c.Request.Context(), cookie.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ContextUserID, sess.UserID)
		c.Next()
	}
}
