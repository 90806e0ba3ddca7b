package services

import (
	"sync"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

const (
	// DefaultFlyZoom is used by FlyTo when the caller does not pick a zoom.
	DefaultFlyZoom = 8
	// InitialZoom and InitialCenter give a world view before any data is loaded.
	InitialZoom = 2
)

var InitialCenter = models.LatLng{Lat: 20, Lng: 0}

// Viewport is the map center and zoom, always read and written together.
type Viewport struct {
	Center models.LatLng
	Zoom   int
}

// MapState tracks the viewport and the selected filter. It holds no friend data.
type MapState struct {
	mu       sync.RWMutex
	viewport Viewport
	filter   models.Filter
}

func NewMapState() *MapState {
	return &MapState{
		viewport: Viewport{Center: InitialCenter, Zoom: InitialZoom},
		filter:   models.FilterAll,
	}
}

func (m *MapState) Viewport() Viewport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewport
}

// FlyTo centers the map on lat/lng at DefaultFlyZoom.
func (m *MapState) FlyTo(lat, lng float64) Viewport {
	return m.FlyToZoom(lat, lng, DefaultFlyZoom)
}

// FlyToZoom sets center and zoom in one step.
func (m *MapState) FlyToZoom(lat, lng float64, zoom int) Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport = Viewport{Center: models.LatLng{Lat: lat, Lng: lng}, Zoom: zoom}
	return m.viewport
}

// SetCenter moves the map without changing zoom.
func (m *MapState) SetCenter(lat, lng float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport.Center = models.LatLng{Lat: lat, Lng: lng}
}

func (m *MapState) SetZoom(zoom int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport.Zoom = zoom
}

func (m *MapState) Filter() models.Filter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filter
}

// SetFilter replaces the filter. Exactly one filter is active at a time.
func (m *MapState) SetFilter(f models.Filter) {
	if f == "" {
		f = models.FilterAll
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = f
}
