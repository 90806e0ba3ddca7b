package models

import "time"

type InboxMessage struct {
	MessageID   string    `json:"message_id" bson:"message_id"`
	FromUserID  string    `json:"from_user_id" bson:"from_user_id"`
	ToUserID    string    `json:"to_user_id" bson:"to_user_id"`
	Content     string    `json:"content" bson:"content"`
	MessageType string    `json:"message_type" bson:"message_type"`
	Read        bool      `json:"read" bson:"read"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	FromUser    *User     `json:"from_user,omitempty" bson:"-"`
}

// MessageInput is the body of POST /api/messages.
type MessageInput struct {
	ToUserID    string `json:"to_user_id"`
	Content     string `json:"content"`
	MessageType string `json:"message_type,omitempty"`
}

// MessageSent is the response of POST /api/messages.
type MessageSent struct {
	Message   string `json:"message"`
	MessageID string `json:"message_id"`
}

// UnreadCount returns how many messages have not been read.
func UnreadCount(msgs []InboxMessage) int {
	n := 0
	for _, m := range msgs {
		if !m.Read {
			n++
		}
	}
	return n
}
