package geo

import (
	"context"
	"log"
	"strings"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// Geocoder turns free-text cities into coordinates. A city it cannot place yields status "failed".
type Geocoder struct {
	gazetteer Gazetteer
}

func NewGeocoder(g Gazetteer) *Geocoder {
	return &Geocoder{gazetteer: g}
}

func (g *Geocoder) Geocode(ctx context.Context, city string) models.GeocodeResult {
	city = strings.TrimSpace(city)
	if city == "" {
		return models.GeocodeResult{Status: models.GeocodeFailed}
	}
	c, ok, err := g.gazetteer.Lookup(ctx, city)
	if err != nil {
		log.Printf("Geocode lookup for %q failed: %v", city, err)
		return models.GeocodeResult{Status: models.GeocodeFailed, City: city}
	}
	if !ok {
		return models.GeocodeResult{Status: models.GeocodeFailed, City: city}
	}
	return models.GeocodeResult{Status: models.GeocodeSuccess, Lat: c.Lat, Lng: c.Lng, City: c.Name, Country: c.Country}
}
