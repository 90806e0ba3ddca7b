package models

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Valid reports whether the pair lies within WGS84 bounds.
func (p LatLng) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// GeocodeStatus is the outcome of resolving free-text city names to coordinates.
type GeocodeStatus string

const (
	GeocodeSuccess GeocodeStatus = "success"
	GeocodeManual  GeocodeStatus = "manual"
	GeocodeFailed  GeocodeStatus = "failed"
)

// Confident reports whether coordinates with this status can be placed on the map without a warning.
func (s GeocodeStatus) Confident() bool {
	return s == GeocodeSuccess || s == GeocodeManual
}

// GeocodeRequest is the body of POST /api/geocode.
type GeocodeRequest struct {
	City string `json:"city"`
}

type GeocodeResult struct {
	Status  GeocodeStatus `json:"status"`
	Lat     float64       `json:"lat,omitempty"`
	Lng     float64       `json:"lng,omitempty"`
	City    string        `json:"city,omitempty"`
	Country string        `json:"country,omitempty"`
}

// City is a gazetteer entry.
type City struct {
	Name    string   `json:"name" bson:"name"`
	Country string   `json:"country" bson:"country"`
	Aliases []string `json:"aliases,omitempty" bson:"aliases,omitempty"`
	Lat     float64  `json:"lat" bson:"lat"`
	Lng     float64  `json:"lng" bson:"lng"`
}
