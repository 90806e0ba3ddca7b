package models

import (
	"strings"
	"time"
)

// ImportedFriend is a contact that is not a platform user.
type ImportedFriend struct {
	FriendID      string        `json:"friend_id" bson:"friend_id"`
	OwnerID       string        `json:"owner_id,omitempty" bson:"owner_id"`
	FirstName     string        `json:"first_name" bson:"first_name"`
	LastName      string        `json:"last_name" bson:"last_name"`
	Name          string        `json:"name" bson:"-"`
	City          string        `json:"city" bson:"city"`
	CityLat       *float64      `json:"city_lat" bson:"city_lat"`
	CityLng       *float64      `json:"city_lng" bson:"city_lng"`
	GeocodeStatus GeocodeStatus `json:"geocode_status" bson:"geocode_status"`
	Email         *string       `json:"email" bson:"email"`
	Phone         *string       `json:"phone" bson:"phone"`
	Photo         *string       `json:"photo,omitempty" bson:"photo,omitempty"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
}

// FullName joins first and last name the way markers display them.
func FullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// DisplayName returns Name, falling back to the joined name parts.
func (f ImportedFriend) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return FullName(f.FirstName, f.LastName)
}

// Located reports whether both coordinates are present.
func (f ImportedFriend) Located() bool {
	return f.CityLat != nil && f.CityLng != nil
}

// Marker converts the record to its map pin. Group membership is filled in by the caller.
func (f ImportedFriend) Marker(groups []GroupRef) MapMarker {
	m := MapMarker{
		FriendID:      f.FriendID,
		Name:          f.DisplayName(),
		City:          f.City,
		MarkerType:    MarkerImported,
		GeocodeStatus: f.GeocodeStatus,
		Groups:        groups,
	}
	if m.GeocodeStatus == "" {
		m.GeocodeStatus = GeocodeSuccess
	}
	if m.Groups == nil {
		m.Groups = []GroupRef{}
	}
	if len(groups) > 0 {
		m.MarkerColor = groups[0].Color
	}
	if f.Located() {
		m.Lat, m.Lng = *f.CityLat, *f.CityLng
	}
	if f.Email != nil {
		m.Email = *f.Email
	}
	if f.Phone != nil {
		m.Phone = *f.Phone
	}
	if f.Photo != nil {
		m.Photo = *f.Photo
	}
	return m
}

// ImportedFriendInput is the body of POST /api/imported-friends.
type ImportedFriendInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	City      string  `json:"city"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

// ImportedFriendUpdate is the body of PUT /api/imported-friends/{id}.
type ImportedFriendUpdate struct {
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	City          string        `json:"city"`
	CityLat       *float64      `json:"city_lat"`
	CityLng       *float64      `json:"city_lng"`
	Email         *string       `json:"email"`
	Phone         *string       `json:"phone"`
	GeocodeStatus GeocodeStatus `json:"geocode_status"`
}

// CSVRowError describes a CSV row the backend could not import.
type CSVRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// CSVImportResult is the response of POST /api/imported-friends/csv.
type CSVImportResult struct {
	TotalImported int              `json:"total_imported"`
	TotalFailed   int              `json:"total_failed"`
	Imported      []ImportedFriend `json:"imported"`
	Errors        []CSVRowError    `json:"errors,omitempty"`
}
