package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"auth-bridge/internal/auth"
	"auth-bridge/internal/auth/provider"
	"auth-bridge/internal/logger"
	"auth-bridge/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init()
}

// stubProvider lets each test script the adapter's behavior and
// inspect what the orchestrator passed in.
type stubProvider struct {
	startReq    *provider.StartRequest
	completeReq *provider.CompleteRequest

	completeRes *auth.Response
	completeErr error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Start(ctx context.Context, req provider.StartRequest) (*auth.RedirectInstruction, error) {
	s.startReq = &req
	return &auth.RedirectInstruction{
		URL:    "https://idp.example.com/authorize?state=" + req.State,
		Status: http.StatusFound,
	}, nil
}

func (s *stubProvider) Complete(ctx context.Context, req provider.CompleteRequest) (*auth.Response, error) {
	s.completeReq = &req
	if s.completeErr != nil {
		return nil, s.completeErr
	}
	return s.completeRes, nil
}

type stubIssuer struct {
	calls int
	token string
	err   error
}

func (s *stubIssuer) Issue(ctx context.Context, identity auth.Identity, profile auth.Profile) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

type stubResolver struct {
	userID string
	err    error
}

func (s *stubResolver) Resolve(ctx context.Context, profile auth.Profile) (string, error) {
	return s.userID, s.err
}

type memoryStore struct {
	sessions map[string]session.Session
	deleted  []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[string]session.Session)}
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

type fixture struct {
	router   *gin.Engine
	provider *stubProvider
	issuer   *stubIssuer
	resolver *stubResolver
	store    *memoryStore
}

func newFixture(t *testing.T, appOrigin string) *fixture {
	t.Helper()

	f := &fixture{
		provider: &stubProvider{
			completeRes: &auth.Response{
				ProviderInfo: auth.ProviderInfo{AccessToken: "tok123"},
				Profile: auth.Profile{
					ID:       "42",
					Provider: "stub",
					Email:    "alice@example.com",
					Emails:   []string{"alice@example.com"},
				},
				Identity: auth.Identity{ID: "alice"},
			},
		},
		issuer:   &stubIssuer{token: "issued-token"},
		resolver: &stubResolver{userID: "user-uuid"},
		store:    newMemoryStore(),
	}

	h := NewHandler(
		provider.NewRegistry(f.provider),
		f.issuer,
		f.resolver,
		f.store,
		appOrigin,
	)

	f.router = gin.New()
	h.RegisterRoutes(f.router)
	return f
}

func TestStart_RedirectsWithFreshState(t *testing.T) {
	f := newFixture(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/stub/start", nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)

	require.NotNil(t, f.provider.startReq)
	assert.NotEmpty(t, f.provider.startReq.State)
	assert.NotEmpty(t, f.provider.startReq.CodeChallenge)
	assert.Contains(t, w.Header().Get("Location"), f.provider.startReq.State)

	cookies := w.Result().Cookies()
	var stateCookie, pkceCookie *http.Cookie
	for _, c := range cookies {
		switch c.Name {
		case stateCookieName:
			stateCookie = c
		case pkceCookieName:
			pkceCookie = c
		}
	}
	require.NotNil(t, stateCookie)
	require.NotNil(t, pkceCookie)
	assert.Equal(t, f.provider.startReq.State, stateCookie.Value)
	assert.True(t, stateCookie.HttpOnly)
}

func TestStart_PassesCallerScopesThrough(t *testing.T) {
	f := newFixture(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/stub/start?scope=read_user+api", nil)
	f.router.ServeHTTP(w, req)

	require.NotNil(t, f.provider.startReq)
	assert.Equal(t, []string{"read_user", "api"}, f.provider.startReq.Scopes)
}

func TestStart_UnknownProvider(t *testing.T) {
	f := newFixture(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/nope/start", nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func frameRequest(query string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/auth/stub/handler/frame?"+query, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestFrame_SuccessReturnsCanonicalResponse(t *testing.T) {
	f := newFixture(t, "")

	w := httptest.NewRecorder()
	req := frameRequest("code=auth-code&state=issued",
		&http.Cookie{Name: stateCookieName, Value: "issued"},
		&http.Cookie{Name: pkceCookieName, Value: "verifier"},
	)
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, f.provider.completeReq)
	assert.Equal(t, "auth-code", f.provider.completeReq.Code)
	assert.Equal(t, "issued", f.provider.completeReq.State)
	assert.Equal(t, "issued", f.provider.completeReq.ExpectedState)
	assert.Equal(t, "verifier", f.provider.completeReq.CodeVerifier)

	var payload struct {
		Type     string        `json:"type"`
		Token    string        `json:"token"`
		Response auth.Response `json:"response"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "authorization_response", payload.Type)
	assert.Equal(t, "issued-token", payload.Token)
	assert.Equal(t, "alice", payload.Response.Identity.ID)
	assert.Equal(t, "tok123", payload.Response.ProviderInfo.AccessToken)

	require.Len(t, f.store.sessions, 1)
	for _, sess := range f.store.sessions {
		assert.Equal(t, "user-uuid", sess.UserID)
		assert.Equal(t, "alice", sess.IdentityID)
		assert.Equal(t, "stub", sess.Provider)
	}
}

func TestFrame_RendersPostMessagePage(t *testing.T) {
	f := newFixture(t, "https://app.example.com")

	w := httptest.NewRecorder()
	req := frameRequest("code=auth-code&state=issued",
		&http.Cookie{Name: stateCookieName, Value: "issued"},
	)
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, "postMessage")
	assert.Contains(t, body, "app.example.com")
	assert.Contains(t, body, "issued-token")
}

func TestFrame_StateMismatchIsAuthenticationFailure(t *testing.T) {
	f := newFixture(t, "")
	f.provider.completeErr = auth.ErrStateMismatch

	w := httptest.NewRecorder()
	req := frameRequest("code=auth-code&state=forged",
		&http.Cookie{Name: stateCookieName, Value: "issued"},
	)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid state")
	assert.Zero(t, f.issuer.calls, "issuer must not run after a failed handshake")
	assert.Empty(t, f.store.sessions)
}

func TestFrame_ExchangeRejectionIsAuthenticationFailure(t *testing.T) {
	f := newFixture(t, "")
	f.provider.completeErr = &auth.ExchangeError{
		Provider: "stub",
		Op:       "exchange",
		Err:      errors.New("invalid_grant"),
	}

	w := httptest.NewRecorder()
	req := frameRequest("code=expired&state=issued",
		&http.Cookie{Name: stateCookieName, Value: "issued"},
	)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authentication failed")
	assert.Zero(t, f.issuer.calls)
}

func TestFrame_IssuanceFailureIsDistinctFromAuthFailure(t *testing.T) {
	f := newFixture(t, "")
	f.issuer.err = &auth.IssuanceError{Err: errors.New("signer unavailable")}

	w := httptest.NewRecorder()
	req := frameRequest("code=auth-code&state=issued",
		&http.Cookie{Name: stateCookieName, Value: "issued"},
	)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "token issuance failed")
	assert.Empty(t, f.store.sessions)
}

func TestFrame_ProviderReportedError(t *testing.T) {
	f := newFixture(t, "")

	w := httptest.NewRecorder()
	req := frameRequest("error=access_denied&error_description=user+cancelled")
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, f.provider.completeReq, "a provider error must short-circuit before Complete")
}

func TestFrame_MissingCode(t *testing.T) {
	f := newFixture(t, "")

	w := httptest.NewRecorder()
	req := frameRequest("state=issued",
		&http.Cookie{Name: stateCookieName, Value: "issued"},
	)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, f.provider.completeReq)
}

func TestFrame_MissingStateCookieStillReachesAdapter(t *testing.T) {
	// With no cookie the expected state is empty; the adapter treats
	// that as a mismatch. The orchestrator just forwards the facts.
	f := newFixture(t, "")
	f.provider.completeErr = auth.ErrStateMismatch

	w := httptest.NewRecorder()
	req := frameRequest("code=auth-code&state=issued")
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, f.provider.completeReq)
	assert.Empty(t, f.provider.completeReq.ExpectedState)
}

func TestLogout_DeletesSessionAndClearsCookie(t *testing.T) {
	f := newFixture(t, "")
	f.store.sessions["sid-1"] = session.Session{SessionID: "sid-1", UserID: "u"}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sid-1"})
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, f.store.deleted, "sid-1")

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie must be cleared")
}

func TestLogout_WithoutSessionIsIdempotent(t *testing.T) {
	f := newFixture(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
