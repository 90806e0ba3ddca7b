package services

import (
	"fmt"
	"strings"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

// MinSearchLength is the shortest query sent to user search.
const MinSearchLength = 2

// ImportedFriendForm is what the add and edit forms collect.
type ImportedFriendForm struct {
	FirstName string
	LastName  string
	City      string
	Lat       *float64
	Lng       *float64
	Email     string
	Phone     string
}

// NewImportedFriendInput validates the add form. Empty email and phone are sent as null.
func NewImportedFriendInput(f ImportedFriendForm) (models.ImportedFriendInput, error) {
	in := models.ImportedFriendInput{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		City:      strings.TrimSpace(f.City),
		Email:     optional(f.Email),
		Phone:     optional(f.Phone),
	}
	if in.FirstName == "" || in.City == "" {
		return in, errors.Validation("first name and city are required")
	}
	return in, nil
}

// NewImportedFriendUpdate builds the edit payload. Coordinates typed by the user are "manual"; without both
// coordinates the position is "failed".
func NewImportedFriendUpdate(f ImportedFriendForm) (models.ImportedFriendUpdate, error) {
	up := models.ImportedFriendUpdate{
		FirstName:     strings.TrimSpace(f.FirstName),
		LastName:      strings.TrimSpace(f.LastName),
		City:          strings.TrimSpace(f.City),
		Email:         optional(f.Email),
		Phone:         optional(f.Phone),
		GeocodeStatus: models.GeocodeFailed,
	}
	if up.FirstName == "" {
		return up, errors.Validation("first name is required")
	}
	if f.Lat != nil && f.Lng != nil {
		if !(models.LatLng{Lat: *f.Lat, Lng: *f.Lng}).Valid() {
			return up, errors.Validation("coordinates are out of range")
		}
		up.CityLat, up.CityLng = f.Lat, f.Lng
		up.GeocodeStatus = models.GeocodeManual
	}
	return up, nil
}

// ValidateCSVName rejects files that are not .csv.
func ValidateCSVName(name string) error {
	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(name)), ".csv") {
		return errors.Validation("please select a CSV file")
	}
	return nil
}

// NewGroupInput validates a new group. An empty color picks the default.
func NewGroupInput(name, color string) (models.GroupInput, error) {
	in := models.GroupInput{Name: strings.TrimSpace(name), Color: strings.TrimSpace(color)}
	if in.Name == "" {
		return in, errors.Validation("group name is required")
	}
	if in.Color == "" {
		in.Color = models.DefaultGroupColor
	}
	if !models.IsPaletteColor(in.Color) {
		return in, errors.Validation(fmt.Sprintf("color %s is not in the palette", in.Color))
	}
	return in, nil
}

// ValidateProfile checks availability tags against the fixed option list.
func ValidateProfile(up models.ProfileUpdate) error {
	for _, tag := range up.Availability {
		if !models.IsValidAvailability(tag) {
			return errors.Validation(fmt.Sprintf("unknown availability %q", tag))
		}
	}
	if (up.ActiveCityLat == nil) != (up.ActiveCityLng == nil) {
		return errors.Validation("active city needs both coordinates")
	}
	return nil
}

// ValidateMeetup requires title, city, coordinates and date.
func ValidateMeetup(in models.MeetupInput) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.City) == "" ||
		in.CityLat == 0 || in.CityLng == 0 || strings.TrimSpace(in.Date) == "" {
		return errors.Validation("please fill in all required fields")
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// messageOf returns the user-facing text of err, or fallback.
func messageOf(err error, fallback string) string {
	if apiErr, ok := err.(*errors.APIError); ok && apiErr.Message != "" && apiErr.Code != errors.CodeNetwork {
		return apiErr.Message
	}
	return fallback
}
