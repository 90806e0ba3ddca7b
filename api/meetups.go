package api

import (
	"context"
	"net/http"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// MeetupsAPI covers /api/meetups.
type MeetupsAPI struct {
	c *Client
}

// List returns meetups the current user created, was invited to or joined.
func (m *MeetupsAPI) List(ctx context.Context) ([]models.Meetup, error) {
	var out []models.Meetup
	if err := m.c.getJSON(ctx, "/api/meetups", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MeetupsAPI) Create(ctx context.Context, in models.MeetupInput) (*models.MeetupCreated, error) {
	var out models.MeetupCreated
	if err := m.c.doJSON(ctx, http.MethodPost, "/api/meetups", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MeetupsAPI) Join(ctx context.Context, meetupID string) error {
	return m.c.doJSON(ctx, http.MethodPost, "/api/meetups/{meetup_id}/join", nil, nil, meetupID)
}

// Delete removes a meetup. Only its creator may do so.
func (m *MeetupsAPI) Delete(ctx context.Context, meetupID string) error {
	return m.c.doJSON(ctx, http.MethodDelete, "/api/meetups/{meetup_id}", nil, nil, meetupID)
}
