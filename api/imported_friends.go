package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

// ImportedFriendsAPI covers /api/imported-friends.
type ImportedFriendsAPI struct {
	c *Client
}

// List returns every imported friend owned by the current user.
func (f *ImportedFriendsAPI) List(ctx context.Context) ([]models.ImportedFriend, error) {
	var out []models.ImportedFriend
	if err := f.c.getJSON(ctx, "/api/imported-friends", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Map returns imported friends as map markers.
func (f *ImportedFriendsAPI) Map(ctx context.Context) ([]models.MapMarker, error) {
	var out []models.MapMarker
	if err := f.c.getJSON(ctx, "/api/imported-friends/map", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Add creates an imported friend. The backend geocodes the city before storing it.
func (f *ImportedFriendsAPI) Add(ctx context.Context, in models.ImportedFriendInput) (*models.ImportedFriend, error) {
	var out models.ImportedFriend
	if err := f.c.doJSON(ctx, http.MethodPost, "/api/imported-friends", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the editable fields of an imported friend.
func (f *ImportedFriendsAPI) Update(ctx context.Context, friendID string, in models.ImportedFriendUpdate) (*models.ImportedFriend, error) {
	var out models.ImportedFriend
	if err := f.c.doJSON(ctx, http.MethodPut, "/api/imported-friends/{friend_id}", in, &out, friendID); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an imported friend.
func (f *ImportedFriendsAPI) Delete(ctx context.Context, friendID string) error {
	return f.c.doJSON(ctx, http.MethodDelete, "/api/imported-friends/{friend_id}", nil, nil, friendID)
}

// Geocode re-runs geocoding for a stored imported friend.
func (f *ImportedFriendsAPI) Geocode(ctx context.Context, friendID string) (*models.ImportedFriend, error) {
	var out models.ImportedFriend
	if err := f.c.doJSON(ctx, http.MethodPost, "/api/imported-friends/{friend_id}/geocode", nil, &out, friendID); err != nil {
		return nil, err
	}
	return &out, nil
}

// ImportCSV uploads a CSV file as the multipart field "file".
func (f *ImportedFriendsAPI) ImportCSV(ctx context.Context, filename string, r io.Reader) (*models.CSVImportResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "could not encode file", 0)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, fmt.Sprintf("could not read %s", filename), 0)
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "could not encode file", 0)
	}

	const route = "/api/imported-friends/csv"
	var out models.CSVImportResult
	if err := f.c.send(ctx, http.MethodPost, route, route, &buf, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
