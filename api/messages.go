package api

import (
	"context"
	"net/http"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// MessagesAPI covers /api/messages.
type MessagesAPI struct {
	c *Client
}

// Inbox returns received messages, newest first.
func (m *MessagesAPI) Inbox(ctx context.Context) ([]models.InboxMessage, error) {
	var out []models.InboxMessage
	if err := m.c.getJSON(ctx, "/api/messages/inbox", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MessagesAPI) Sent(ctx context.Context) ([]models.InboxMessage, error) {
	var out []models.InboxMessage
	if err := m.c.getJSON(ctx, "/api/messages/sent", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Send delivers a message. An empty message type is sent as "text".
func (m *MessagesAPI) Send(ctx context.Context, in models.MessageInput) (*models.MessageSent, error) {
	if in.MessageType == "" {
		in.MessageType = "text"
	}
	var out models.MessageSent
	if err := m.c.doJSON(ctx, http.MethodPost, "/api/messages", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MessagesAPI) MarkRead(ctx context.Context, messageID string) error {
	return m.c.doJSON(ctx, http.MethodPut, "/api/messages/{message_id}/read", nil, nil, messageID)
}
