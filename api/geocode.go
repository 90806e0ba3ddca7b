package api

import (
	"context"
	"net/http"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// GeocodingAPI covers /api/geocode.
type GeocodingAPI struct {
	c *Client
}

// Geocode resolves a free-text city. A city the backend cannot place comes back with status "failed", not an error.
func (g *GeocodingAPI) Geocode(ctx context.Context, city string) (*models.GeocodeResult, error) {
	var out models.GeocodeResult
	if err := g.c.doJSON(ctx, http.MethodPost, "/api/geocode", models.GeocodeRequest{City: city}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
