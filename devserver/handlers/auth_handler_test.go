package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/middleware"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var out models.Health
	decodeBody(t, rec, &out)
	assert.Equal(t, "healthy", out.Status)
	assert.NotEmpty(t, out.Timestamp)
}

func TestCreateSessionSetsCookie(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/auth/session", "", models.SessionExchange{SessionID: "sid_anna"})
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, "/", cookie.Path)

	var out models.AuthSession
	decodeBody(t, rec, &out)
	assert.Equal(t, cookie.Value, out.SessionToken)
	assert.Equal(t, "anna@example.com", out.User.Email)
	assert.True(t, strings.HasPrefix(out.User.UserID, "user_"))
}

func TestCreateSessionRejectsUnknownID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/session", "", models.SessionExchange{SessionID: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/session", "", models.SessionExchange{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRequiresSession(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", detailOf(t, rec))

	rec = s.do(t, http.MethodGet, "/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeAcceptsBearerToken(t *testing.T) {
	s := newTestServer(t)
	token, user := s.login(t, "sid_anna")

	r := newRequest(http.MethodGet, "/api/auth/me")
	r.Header.Set("Authorization", "Bearer "+token)
	rec := serve(s, r)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.User
	decodeBody(t, rec, &me)
	assert.Equal(t, user.UserID, me.UserID)
}

func TestSecondLoginReplacesSession(t *testing.T) {
	s := newTestServer(t)
	first, _ := s.login(t, "sid_anna")
	second, _ := s.login(t, "sid_anna")

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/me", first, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/auth/me", second, nil).Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login(t, "sid_anna")

	rec := s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msg models.StatusMessage
	decodeBody(t, rec, &msg)
	assert.Equal(t, "Logged out", msg.Message)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/me", token, nil).Code)

	// Logging out without a session still succeeds.
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/auth/logout", "", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	r := newRequest(http.MethodOptions, "/api/friends")
	r.Header.Set("Origin", "http://localhost:3000")
	rec := serve(s, r)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/health", "", nil)

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "myf_devserver_http_requests_total")
}
