package api

import (
	"context"
	"net/http"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// AuthAPI covers /api/auth.
type AuthAPI struct {
	c *Client
}

// Me returns the user bound to the current session cookie.
func (a *AuthAPI) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := a.c.getJSON(ctx, "/api/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Session exchanges an identity-provider session id for a backend session cookie.
func (a *AuthAPI) Session(ctx context.Context, sessionID string) (*models.AuthSession, error) {
	var out models.AuthSession
	err := a.c.doJSON(ctx, http.MethodPost, "/api/auth/session", models.SessionExchange{SessionID: sessionID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the session on the backend.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}
