package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// UsersAPI covers /api/users and /api/search/users.
type UsersAPI struct {
	c *Client
}

// Get returns a public user profile.
func (u *UsersAPI) Get(ctx context.Context, userID string) (*models.User, error) {
	var out models.User
	if err := u.c.getJSON(ctx, "/api/users/{user_id}", &out, userID); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMe saves the current user's profile and returns the stored user.
func (u *UsersAPI) UpdateMe(ctx context.Context, in models.ProfileUpdate) (*models.User, error) {
	var out models.User
	if err := u.c.doJSON(ctx, http.MethodPut, "/api/users/me", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search looks users up by name or email.
func (u *UsersAPI) Search(ctx context.Context, query string) ([]models.User, error) {
	const route = "/api/search/users"
	var out []models.User
	if err := u.c.send(ctx, http.MethodGet, route, route+"?q="+url.QueryEscape(query), nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats returns the current user's network statistics and earned badges.
func (u *UsersAPI) Stats(ctx context.Context) (*models.UserStats, error) {
	var out models.UserStats
	if err := u.c.getJSON(ctx, "/api/users/me/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export downloads everything the backend stores about the current user.
func (u *UsersAPI) Export(ctx context.Context) (*models.UserExport, error) {
	var out models.UserExport
	if err := u.c.getJSON(ctx, "/api/users/me/export", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
