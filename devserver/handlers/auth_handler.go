package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/middleware"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/session"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

type AuthHandler struct {
	sessions *session.Manager
	identity session.Provider
}

func NewAuthHandler(sessions *session.Manager, identity session.Provider) *AuthHandler {
	return &AuthHandler{sessions: sessions, identity: identity}
}

// CreateSession exchanges the identity provider's session id for a session cookie.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var input models.SessionExchange
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if strings.TrimSpace(input.SessionID) == "" {
		middleware.WriteError(w, badRequest("session_id required"))
		return
	}

	id, err := h.identity.Resolve(r.Context(), input.SessionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	user, sess, err := h.sessions.Open(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	http.SetCookie(w, sessionCookie(r, sess.SessionToken, int(session.TTL/time.Second)))
	middleware.WriteJSON(w, models.AuthSession{User: user, SessionToken: sess.SessionToken})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, user)
}

// Logout drops the session if there is one and always clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFrom(r); token != "" {
		if err := h.sessions.Close(r.Context(), token); err != nil {
			middleware.WriteError(w, err)
			return
		}
	}
	http.SetCookie(w, sessionCookie(r, "", -1))
	middleware.WriteJSON(w, message("Logged out"))
}

// sessionCookie is HttpOnly; it is only marked Secure (and SameSite=None) when served over TLS.
func sessionCookie(r *http.Request, value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if r.TLS != nil {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, models.Health{Status: "healthy", Timestamp: time.Now().UTC().Format(time.RFC3339)})
}
