package models

import "time"

// AuthSession is the response of POST /api/auth/session.
type AuthSession struct {
	User         User   `json:"user"`
	SessionToken string `json:"session_token"`
}

// SessionExchange is the body of POST /api/auth/session.
type SessionExchange struct {
	SessionID string `json:"session_id"`
}

// StatusMessage is the generic {"message": "..."} response body.
type StatusMessage struct {
	Message string `json:"message"`
}

// Health is the response of GET /api/health.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Session is a server-side session record keyed by its token.
type Session struct {
	UserID       string    `json:"user_id" bson:"user_id"`
	SessionToken string    `json:"session_token" bson:"session_token"`
	ExpiresAt    time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
