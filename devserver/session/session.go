package session

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/store"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

// TTL is how long a session cookie stays valid.
const TTL = 7 * 24 * time.Hour

// Manager issues and validates session tokens. Tokens are HS256 JWTs that must also still exist in the
// store, so logging out revokes them.
type Manager struct {
	store     store.Store
	jwtSecret []byte
	now       func() time.Time
}

func NewManager(s store.Store, jwtSecret string) *Manager {
	return &Manager{store: s, jwtSecret: []byte(jwtSecret), now: time.Now}
}

// Open signs in the user behind identity, creating the account on first sight, and returns a fresh session.
// Any previous session of that user is replaced.
func (m *Manager) Open(ctx context.Context, id Identity) (models.User, models.Session, error) {
	user, err := m.store.UpsertUserByEmail(ctx, id.Email, id.Name, id.Picture)
	if err != nil {
		return models.User{}, models.Session{}, err
	}

	now := m.now().UTC()
	expires := now.Add(TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID": user.UserID,
		"sid":    uuid.NewString(),
		"iat":    now.Unix(),
		"exp":    expires.Unix(),
	})
	tokenString, err := token.SignedString(m.jwtSecret)
	if err != nil {
		return models.User{}, models.Session{}, errors.Wrap(err, "JWT_ERROR", "Failed to generate token", http.StatusInternalServerError)
	}

	sess := models.Session{UserID: user.UserID, SessionToken: tokenString, ExpiresAt: expires, CreatedAt: now}
	if err := m.store.ReplaceSession(ctx, sess); err != nil {
		return models.User{}, models.Session{}, err
	}
	return user, sess, nil
}

// Authenticate returns the user that owns token.
func (m *Manager) Authenticate(ctx context.Context, tokenString string) (models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewAPIError("INVALID_TOKEN", "Unexpected signing method", http.StatusUnauthorized)
		}
		return m.jwtSecret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return models.User{}, errors.NewAPIError("INVALID_SESSION", "Invalid session", http.StatusUnauthorized)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.User{}, errors.ErrUnauthorized
	}
	userID, ok := claims["userID"].(string)
	if !ok {
		return models.User{}, errors.ErrUnauthorized
	}

	sess, err := m.store.GetSession(ctx, tokenString)
	if err != nil || sess.UserID != userID {
		return models.User{}, errors.NewAPIError("INVALID_SESSION", "Invalid session", http.StatusUnauthorized)
	}
	if sess.ExpiresAt.Before(m.now()) {
		return models.User{}, errors.NewAPIError("SESSION_EXPIRED", "Session expired", http.StatusUnauthorized)
	}
	user, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, errors.NewAPIError("USER_NOT_FOUND", "User not found", http.StatusUnauthorized)
	}
	return user, nil
}

// Close revokes token.
func (m *Manager) Close(ctx context.Context, token string) error {
	return m.store.DeleteSession(ctx, token)
}
