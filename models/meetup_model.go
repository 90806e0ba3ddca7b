package models

import "time"

type Meetup struct {
	MeetupID       string    `json:"meetup_id" bson:"meetup_id"`
	CreatorID      string    `json:"creator_id" bson:"creator_id"`
	Title          string    `json:"title" bson:"title"`
	City           string    `json:"city" bson:"city"`
	CityLat        float64   `json:"city_lat" bson:"city_lat"`
	CityLng        float64   `json:"city_lng" bson:"city_lng"`
	Date           string    `json:"date" bson:"date"`
	Description    string    `json:"description,omitempty" bson:"description,omitempty"`
	InvitedUserIDs []string  `json:"invited_user_ids" bson:"invited_user_ids"`
	AttendeeIDs    []string  `json:"attendee_ids" bson:"attendee_ids"`
	Status         string    `json:"status" bson:"status"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// MeetupInput is the body of POST /api/meetups.
type MeetupInput struct {
	Title          string   `json:"title"`
	City           string   `json:"city"`
	CityLat        float64  `json:"city_lat"`
	CityLng        float64  `json:"city_lng"`
	Date           string   `json:"date"`
	Description    string   `json:"description,omitempty"`
	InvitedUserIDs []string `json:"invited_user_ids,omitempty"`
}

// MeetupCreated is the response of POST /api/meetups.
type MeetupCreated struct {
	Message  string `json:"message"`
	MeetupID string `json:"meetup_id"`
}
