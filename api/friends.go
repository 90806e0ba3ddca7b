package api

import (
	"context"
	"net/http"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// FriendsAPI covers /api/friends.
type FriendsAPI struct {
	c *Client
}

// List returns registered friends only.
func (f *FriendsAPI) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := f.c.getJSON(ctx, "/api/friends", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Map returns located registered friends without group data.
func (f *FriendsAPI) Map(ctx context.Context) ([]models.MapMarker, error) {
	var out []models.MapMarker
	if err := f.c.getJSON(ctx, "/api/friends/map", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MapGrouped returns registered and imported markers tagged by marker_type, with group membership.
func (f *FriendsAPI) MapGrouped(ctx context.Context) ([]models.MapMarker, error) {
	var out []models.MapMarker
	if err := f.c.getJSON(ctx, "/api/friends/map/grouped", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Requests returns friend requests pending for the current user.
func (f *FriendsAPI) Requests(ctx context.Context) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	if err := f.c.getJSON(ctx, "/api/friends/requests", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendRequest asks toUserID to become a friend.
func (f *FriendsAPI) SendRequest(ctx context.Context, toUserID string) (*models.FriendRequestSent, error) {
	var out models.FriendRequestSent
	err := f.c.doJSON(ctx, http.MethodPost, "/api/friends/request", models.SendFriendRequest{ToUserID: toUserID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Accept accepts a pending request.
func (f *FriendsAPI) Accept(ctx context.Context, friendshipID string) error {
	return f.c.doJSON(ctx, http.MethodPost, "/api/friends/accept/{friendship_id}", nil, nil, friendshipID)
}

// Remove deletes the friendship with friendID.
func (f *FriendsAPI) Remove(ctx context.Context, friendID string) error {
	return f.c.doJSON(ctx, http.MethodDelete, "/api/friends/{friend_id}", nil, nil, friendID)
}
