package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/geo"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/middleware"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/session"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/store"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

type testServer struct {
	router http.Handler
	store  *store.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newWrappedServer(t, nil)
}

// newWrappedServer puts wrap in front of the memory store, so a test can override single store calls.
func newWrappedServer(t *testing.T, wrap func(store.Store) store.Store) *testServer {
	t.Helper()
	cities, err := geo.DefaultCities()
	require.NoError(t, err)

	st := store.NewMemoryStore()
	var backing store.Store = st
	if wrap != nil {
		backing = wrap(st)
	}
	router := NewRouter(Deps{
		Store:    backing,
		Sessions: session.NewManager(backing, "test-secret"),
		Identity: session.StaticProvider{
			"sid_anna":  {Email: "anna@example.com", Name: "Anna"},
			"sid_bruno": {Email: "bruno@example.com", Name: "Bruno"},
			"sid_carla": {Email: "carla@example.com", Name: "Carla"},
		},
		Geocoder:       geo.NewGeocoder(geo.NewMemoryGazetteer(cities)),
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	return &testServer{router: router, store: st}
}

// login exchanges a session id and returns the issued token and user.
func (s *testServer) login(t *testing.T, sid string) (string, models.User) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/session", "", models.SessionExchange{SessionID: sid})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out models.AuthSession
	decodeBody(t, rec, &out)
	return out.SessionToken, out.User
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(t *testing.T, path, token, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body middleware.ErrorBody
	decodeBody(t, rec, &body)
	return body.Detail
}

// befriend makes a and b friends through the public endpoints.
func (s *testServer) befriend(t *testing.T, fromToken, toToken, toUserID string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/friends/request", fromToken, models.SendFriendRequest{ToUserID: toUserID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sent models.FriendRequestSent
	decodeBody(t, rec, &sent)

	rec = s.do(t, http.MethodPost, "/api/friends/accept/"+sent.FriendshipID, toToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(s *testServer, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, r)
	return rec
}
