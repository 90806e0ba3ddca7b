package models

import "time"

// Badge is an achievement earned from the shape of a user's network.
type Badge struct {
	BadgeID     string `json:"badge_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// UserStats is the response of GET /api/users/me/stats. The breakdowns count friends per country and per
// continent; friends whose country is unknown are left out of both.
type UserStats struct {
	UserID              string         `json:"user_id"`
	TotalFriends        int            `json:"total_friends"`
	TotalImported       int            `json:"total_imported"`
	TotalRegistered     int            `json:"total_registered"`
	UniqueCities        int            `json:"unique_cities"`
	UniqueCountries     int            `json:"unique_countries"`
	UniqueContinents    int            `json:"unique_continents"`
	CountriesBreakdown  map[string]int `json:"countries_breakdown"`
	ContinentsBreakdown map[string]int `json:"continents_breakdown"`
	MeetupsCreated      int            `json:"meetups_created"`
	MessagesSent        int            `json:"messages_sent"`
	BadgesEarned        []string       `json:"badges_earned"`
	Badges              []Badge        `json:"badges"`
	LastCalculated      time.Time      `json:"last_calculated"`
}

// HasBadge reports whether badgeID is among the earned badges.
func (s UserStats) HasBadge(badgeID string) bool {
	for _, id := range s.BadgesEarned {
		if id == badgeID {
			return true
		}
	}
	return false
}

// UserExport is the response of GET /api/users/me/export: everything stored about the caller.
// Registered friends carry public fields only.
type UserExport struct {
	GeneratedAt       time.Time        `json:"generated_at"`
	Profile           User             `json:"profile"`
	ImportedFriends   []ImportedFriend `json:"friends_imported"`
	RegisteredFriends []User           `json:"friends_registered"`
	Groups            []Group          `json:"groups"`
	MessagesSent      []InboxMessage   `json:"messages_sent"`
	MessagesReceived  []InboxMessage   `json:"messages_received"`
	Meetups           []Meetup         `json:"meetups"`
	Stats             UserStats        `json:"stats"`
}
