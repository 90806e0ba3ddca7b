// Package stats computes network statistics and badges for a user.
package stats

import (
	"strings"
	"time"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

const otherContinent = "Other"

var continentOf = map[string]string{
	"Italy": "Europe", "Italia": "Europe", "Germany": "Europe", "France": "Europe", "Spain": "Europe",
	"United Kingdom": "Europe", "UK": "Europe", "Netherlands": "Europe", "Belgium": "Europe",
	"Switzerland": "Europe", "Austria": "Europe", "Portugal": "Europe", "Poland": "Europe",
	"Sweden": "Europe", "Norway": "Europe", "Denmark": "Europe", "Finland": "Europe",
	"Ireland": "Europe", "Greece": "Europe", "Czech Republic": "Europe", "Romania": "Europe",

	"Japan": "Asia", "China": "Asia", "South Korea": "Asia", "India": "Asia",
	"Thailand": "Asia", "Vietnam": "Asia", "Singapore": "Asia", "Indonesia": "Asia",
	"Malaysia": "Asia", "Philippines": "Asia", "Taiwan": "Asia", "Hong Kong": "Asia",
	"Israel": "Asia", "United Arab Emirates": "Asia", "Turkey": "Asia",

	"United States": "Americas", "USA": "Americas", "Canada": "Americas", "Mexico": "Americas",
	"Brazil": "Americas", "Argentina": "Americas", "Colombia": "Americas", "Chile": "Americas",

	"South Africa": "Africa", "Egypt": "Africa", "Morocco": "Africa", "Kenya": "Africa",
	"Nigeria": "Africa", "Ghana": "Africa",

	"Australia": "Oceania", "New Zealand": "Oceania",
}

// Continent maps a country name to its continent, or "Other".
func Continent(country string) string {
	if c, ok := continentOf[country]; ok {
		return c
	}
	return otherContinent
}

// Input is what Compute needs. CountryOf resolves a city to its country and returns "" when unknown.
type Input struct {
	UserID         string
	Registered     []models.User
	Imported       []models.ImportedFriend
	MeetupsCreated int
	MessagesSent   int
	CountryOf      func(city string) string
	Now            time.Time
}

// Compute derives totals, geographic spread and earned badges.
func Compute(in Input) models.UserStats {
	countryOf := in.CountryOf
	if countryOf == nil {
		countryOf = func(string) string { return "" }
	}

	cities := map[string]bool{}
	countries := map[string]int{}
	count := func(city string) {
		city = strings.TrimSpace(city)
		if city == "" {
			return
		}
		cities[strings.ToLower(city)] = true
		if country := countryOf(city); country != "" {
			countries[country]++
		}
	}
	for _, u := range in.Registered {
		count(u.ActiveCity)
	}
	for _, f := range in.Imported {
		count(f.City)
	}

	continents := map[string]int{}
	spread := map[string]int{}
	for country, n := range countries {
		c := Continent(country)
		continents[c] += n
		spread[c]++
	}
	named := 0
	for c := range continents {
		if c != otherContinent {
			named++
		}
	}

	s := models.UserStats{
		UserID:              in.UserID,
		TotalRegistered:     len(in.Registered),
		TotalImported:       len(in.Imported),
		TotalFriends:        len(in.Registered) + len(in.Imported),
		UniqueCities:        len(cities),
		UniqueCountries:     len(countries),
		UniqueContinents:    named,
		CountriesBreakdown:  countries,
		ContinentsBreakdown: continents,
		MeetupsCreated:      in.MeetupsCreated,
		MessagesSent:        in.MessagesSent,
		BadgesEarned:        []string{},
		Badges:              []models.Badge{},
		LastCalculated:      in.Now,
	}
	for _, b := range catalog {
		if b.earned(s, spread) {
			s.BadgesEarned = append(s.BadgesEarned, b.BadgeID)
			s.Badges = append(s.Badges, b.Badge)
		}
	}
	return s
}
