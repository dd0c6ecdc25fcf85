package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auth-bridge/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryStore struct {
	sessions map[string]session.Session
	deleted  []string
}

func (m *memoryStore) Create(ctx context.Context, s session.Session) error {
	m.sessions[s.SessionID] = s
	return nil
}

func (m *memoryStore) Get(ctx context.Context, id string) (*session.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memoryStore) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.sessions, id)
	return nil
}

func newRouter(store session.Store) *gin.Engine {
	r := gin.New()
	r.GET("/protected", RequireAuth(store), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(ContextUserID)})
	})
	return r
}

func TestRequireAuth_ValidSession(t *testing.T) {
	store := &memoryStore{sessions: map[string]session.Session{
		"sid": {SessionID: "sid", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)},
	}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sid"})
	newRouter(store).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	store := &memoryStore{sessions: map[string]session.Session{}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	newRouter(store).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_UnknownSession(t *testing.T) {
	store := &memoryStore{sessions: map[string]session.Session{}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "ghost"})
	newRouter(store).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_ExpiredSessionDeleted(t *testing.T) {
	store := &memoryStore{sessions: map[string]session.Session{
		"sid": {SessionID: "sid", UserID: "user-1", ExpiresAt: time.Now().Add(-time.Minute)},
	}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sid"})
	newRouter(store).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, store.deleted, "sid")
}
