package models

import (
	"strings"
	"time"
)

// MarkerType classifies a map pin.
type MarkerType string

const (
	MarkerActive    MarkerType = "active"
	MarkerCompetent MarkerType = "competent"
	MarkerImported  MarkerType = "imported"
)

// MapMarker is one pin returned by the map endpoints. Registered friends are keyed by UserID,
// imported friends by FriendID; the two namespaces never overlap.
type MapMarker struct {
	UserID          string          `json:"user_id,omitempty"`
	FriendID        string          `json:"friend_id,omitempty"`
	Name            string          `json:"name"`
	Picture         string          `json:"picture,omitempty"`
	Photo           string          `json:"photo,omitempty"`
	Bio             string          `json:"bio,omitempty"`
	ActiveCity      string          `json:"active_city,omitempty"`
	CityName        string          `json:"city_name,omitempty"`
	City            string          `json:"city,omitempty"`
	Lat             float64         `json:"lat"`
	Lng             float64         `json:"lng"`
	MarkerType      MarkerType      `json:"marker_type"`
	GeocodeStatus   GeocodeStatus   `json:"geocode_status,omitempty"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	Availability    []string        `json:"availability,omitempty"`
	CompetentCities []CompetentCity `json:"competent_cities,omitempty"`
	Groups          []GroupRef      `json:"groups"`
	MarkerColor     string          `json:"marker_color,omitempty"`
}

// IsImported reports whether the marker belongs to the imported-friend namespace.
func (m MapMarker) IsImported() bool {
	return m.MarkerType == MarkerImported
}

// MemberRef returns the id and namespace used for group membership calls.
func (m MapMarker) MemberRef() (string, MemberType) {
	if m.IsImported() {
		return m.FriendID, MemberImported
	}
	return m.UserID, MemberUser
}

// Flagged reports whether an imported marker's position is not confidently geocoded.
func (m MapMarker) Flagged() bool {
	if !m.IsImported() {
		return false
	}
	if m.GeocodeStatus == "" {
		return false
	}
	return !m.GeocodeStatus.Confident()
}

// InGroup reports whether the marker's membership list contains groupID.
func (m MapMarker) InGroup(groupID string) bool {
	for _, g := range m.Groups {
		if g.GroupID == groupID {
			return true
		}
	}
	return false
}

// Location returns the marker's coordinates.
func (m MapMarker) Location() LatLng {
	return LatLng{Lat: m.Lat, Lng: m.Lng}
}

// Initial is the single upper-cased letter drawn inside the pin.
func (m MapMarker) Initial() string {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(name)[0]))
}

// FriendshipStatus tracks the lifecycle of an edge between two users.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

type Friendship struct {
	FriendshipID string           `json:"friendship_id" bson:"friendship_id"`
	UserID       string           `json:"user_id" bson:"user_id"`
	FriendID     string           `json:"friend_id" bson:"friend_id"`
	Status       FriendshipStatus `json:"status" bson:"status"`
	CreatedAt    time.Time        `json:"created_at" bson:"created_at"`
	AcceptedAt   *time.Time       `json:"accepted_at,omitempty" bson:"accepted_at,omitempty"`
}

// Other returns the id on the opposite side of the edge from userID.
func (f Friendship) Other(userID string) string {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}

// FriendRequest is a pending friendship addressed to the current user.
type FriendRequest struct {
	FriendshipID string    `json:"friendship_id"`
	FromUser     User      `json:"from_user"`
	CreatedAt    time.Time `json:"created_at"`
}

// SendFriendRequest is the body of POST /api/friends/request.
type SendFriendRequest struct {
	ToUserID string `json:"to_user_id"`
}

// FriendRequestSent is the response of POST /api/friends/request.
type FriendRequestSent struct {
	Message      string `json:"message"`
	FriendshipID string `json:"friendship_id"`
}
