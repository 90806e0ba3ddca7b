package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/session"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

// SessionCookie carries the session token.
const SessionCookie = "session_token"

type ctxKey int

const (
	userKey ctxKey = iota
	tokenKey
)

// TokenFrom reads the session token from the cookie, falling back to a Bearer header.
func TokenFrom(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// SessionMiddleware rejects requests without a valid session and stores the user in the request context.
func SessionMiddleware(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			token := TokenFrom(r)
			if token == "" {
				WriteError(w, errors.ErrUnauthorized)
				return
			}
			user, err := sessions.Authenticate(r.Context(), token)
			if err != nil {
				WriteError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user of the request.
func UserFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}
