package models

import "time"

// Availability is a tag a user advertises on their profile.
type Availability string

const (
	AvailabilityAdvice        Availability = "Advice"
	AvailabilityIntro         Availability = "Intro"
	AvailabilityMeetup        Availability = "Meetup"
	AvailabilityCoffee        Availability = "Coffee"
	AvailabilityCollaboration Availability = "Collaboration"
)

// AvailabilityOptions is the fixed list a profile may draw from, in display order.
var AvailabilityOptions = []Availability{
	AvailabilityAdvice,
	AvailabilityIntro,
	AvailabilityMeetup,
	AvailabilityCoffee,
	AvailabilityCollaboration,
}

// IsValidAvailability reports whether tag is one of AvailabilityOptions.
func IsValidAvailability(tag string) bool {
	for _, opt := range AvailabilityOptions {
		if string(opt) == tag {
			return true
		}
	}
	return false
}

// CompetentCity is a city a user knows well without living there.
type CompetentCity struct {
	Name string  `json:"name" bson:"name"`
	Lat  float64 `json:"lat" bson:"lat"`
	Lng  float64 `json:"lng" bson:"lng"`
}

type User struct {
	UserID          string          `json:"user_id" bson:"user_id"`
	Email           string          `json:"email" bson:"email"`
	Name            string          `json:"name" bson:"name"`
	Picture         string          `json:"picture,omitempty" bson:"picture,omitempty"`
	Bio             string          `json:"bio,omitempty" bson:"bio,omitempty"`
	ActiveCity      string          `json:"active_city,omitempty" bson:"active_city,omitempty"`
	ActiveCityLat   *float64        `json:"active_city_lat,omitempty" bson:"active_city_lat,omitempty"`
	ActiveCityLng   *float64        `json:"active_city_lng,omitempty" bson:"active_city_lng,omitempty"`
	CompetentCities []CompetentCity `json:"competent_cities" bson:"competent_cities"`
	Availability    []string        `json:"availability" bson:"availability"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at"`
}

// ActiveLocation returns the coordinates of the user's active city, if set.
func (u User) ActiveLocation() (LatLng, bool) {
	if u.ActiveCityLat == nil || u.ActiveCityLng == nil {
		return LatLng{}, false
	}
	return LatLng{Lat: *u.ActiveCityLat, Lng: *u.ActiveCityLng}, true
}

// ProfileUpdate is the body of PUT /api/users/me. Nil fields are left untouched.
type ProfileUpdate struct {
	Bio             *string         `json:"bio,omitempty"`
	ActiveCity      *string         `json:"active_city,omitempty"`
	ActiveCityLat   *float64        `json:"active_city_lat,omitempty"`
	ActiveCityLng   *float64        `json:"active_city_lng,omitempty"`
	CompetentCities []CompetentCity `json:"competent_cities,omitempty"`
	Availability    []string        `json:"availability,omitempty"`
}
