package stats

import "github.com/thebestitaly/mapyourfriends-emergent/models"

type badge struct {
	models.Badge
	// spread counts distinct countries per continent.
	earned func(s models.UserStats, spread map[string]int) bool
}

func atLeastFriends(n int) func(models.UserStats, map[string]int) bool {
	return func(s models.UserStats, _ map[string]int) bool { return s.TotalFriends >= n }
}

func countriesIn(continent string, n int) func(models.UserStats, map[string]int) bool {
	return func(_ models.UserStats, spread map[string]int) bool { return spread[continent] >= n }
}

// catalog is evaluated in order; earned badges keep this order.
var catalog = []badge{
	{models.Badge{BadgeID: "first_friend", Name: "First Friend", Description: "Added your first friend", Icon: "👋"}, atLeastFriends(1)},
	{models.Badge{BadgeID: "social_starter", Name: "Social Starter", Description: "10+ friends mapped", Icon: "🌱"}, atLeastFriends(10)},
	{models.Badge{BadgeID: "social_butterfly", Name: "Social Butterfly", Description: "50+ friends mapped", Icon: "🦋"}, atLeastFriends(50)},
	{models.Badge{BadgeID: "network_master", Name: "Network Master", Description: "100+ friends mapped", Icon: "👑"}, atLeastFriends(100)},
	{models.Badge{BadgeID: "city_explorer", Name: "City Explorer", Description: "Friends in 5+ cities", Icon: "🏙️"},
		func(s models.UserStats, _ map[string]int) bool { return s.UniqueCities >= 5 }},
	{models.Badge{BadgeID: "globetrotter", Name: "Globetrotter", Description: "Friends in 10+ countries", Icon: "🌍"},
		func(s models.UserStats, _ map[string]int) bool { return s.UniqueCountries >= 10 }},
	{models.Badge{BadgeID: "world_citizen", Name: "World Citizen", Description: "Friends in 20+ countries", Icon: "🌐"},
		func(s models.UserStats, _ map[string]int) bool { return s.UniqueCountries >= 20 }},
	{models.Badge{BadgeID: "european_network", Name: "European Network", Description: "Friends in 5+ European countries", Icon: "🇪🇺"}, countriesIn("Europe", 5)},
	{models.Badge{BadgeID: "asia_explorer", Name: "Asia Explorer", Description: "Friends in 3+ Asian countries", Icon: "🏯"}, countriesIn("Asia", 3)},
	{models.Badge{BadgeID: "americas_connector", Name: "Americas Connector", Description: "Friends in 2+ countries of the Americas", Icon: "🗽"}, countriesIn("Americas", 2)},
	{models.Badge{BadgeID: "multi_continental", Name: "Multi-Continental", Description: "Friends on 3+ continents", Icon: "✈️"},
		func(s models.UserStats, _ map[string]int) bool { return s.UniqueContinents >= 3 }},
	{models.Badge{BadgeID: "meetup_starter", Name: "Meetup Starter", Description: "Organized your first meetup", Icon: "📅"},
		func(s models.UserStats, _ map[string]int) bool { return s.MeetupsCreated >= 1 }},
	{models.Badge{BadgeID: "meetup_master", Name: "Meetup Master", Description: "Organized 5+ meetups", Icon: "🎉"},
		func(s models.UserStats, _ map[string]int) bool { return s.MeetupsCreated >= 5 }},
}

// Catalog lists every badge that can be earned.
func Catalog() []models.Badge {
	out := make([]models.Badge, 0, len(catalog))
	for _, b := range catalog {
		out = append(out, b.Badge)
	}
	return out
}
