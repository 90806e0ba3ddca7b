package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

func TestNewMapState(t *testing.T) {
	m := NewMapState()
	vp := m.Viewport()
	assert.Equal(t, InitialCenter, vp.Center)
	assert.Equal(t, InitialZoom, vp.Zoom)
	assert.Equal(t, models.FilterAll, m.Filter())
}

func TestFlyToSetsCenterAndZoomTogether(t *testing.T) {
	m := NewMapState()
	vp := m.FlyTo(45.4642, 9.19)
	assert.Equal(t, Viewport{Center: models.LatLng{Lat: 45.4642, Lng: 9.19}, Zoom: DefaultFlyZoom}, vp)
	assert.Equal(t, vp, m.Viewport())
}

func TestConcurrentFlyToNeverMixesViewports(t *testing.T) {
	m := NewMapState()
	a := Viewport{Center: models.LatLng{Lat: 45.4642, Lng: 9.19}, Zoom: 8}
	b := Viewport{Center: models.LatLng{Lat: 41.9028, Lng: 12.4964}, Zoom: 12}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.FlyToZoom(a.Center.Lat, a.Center.Lng, a.Zoom)
		}()
		go func() {
			defer wg.Done()
			m.FlyToZoom(b.Center.Lat, b.Center.Lng, b.Zoom)
		}()
	}
	wg.Wait()

	vp := m.Viewport()
	assert.True(t, vp == a || vp == b, "viewport %+v mixes two fly-to calls", vp)
}

func TestSetFilterEmptyMeansAll(t *testing.T) {
	m := NewMapState()
	m.SetFilter(models.GroupFilter("group_1"))
	assert.Equal(t, models.Filter("group_1"), m.Filter())
	m.SetFilter("")
	assert.Equal(t, models.FilterAll, m.Filter())
}

func TestMarkerStyles(t *testing.T) {
	tests := []struct {
		name       string
		marker     models.MapMarker
		background string
		flagged    bool
		outlined   bool
	}{
		{"group color wins", models.MapMarker{Name: "anna", MarkerType: models.MarkerActive, MarkerColor: "#10B981"}, "#10B981", false, false},
		{"active", models.MapMarker{Name: "anna", MarkerType: models.MarkerActive}, gradientActive, false, false},
		{"competent", models.MapMarker{Name: "anna", MarkerType: models.MarkerCompetent}, "transparent", false, true},
		{"imported success", models.MapMarker{Name: "mario", MarkerType: models.MarkerImported, GeocodeStatus: models.GeocodeSuccess}, gradientImported, false, false},
		{"imported failed", models.MapMarker{Name: "giulia", MarkerType: models.MarkerImported, GeocodeStatus: models.GeocodeFailed}, gradientWarning, true, false},
		{"imported manual", models.MapMarker{Name: "luca", MarkerType: models.MarkerImported, GeocodeStatus: models.GeocodeManual}, gradientWarning, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := StyleOf(tt.marker)
			assert.Equal(t, tt.background, st.Background)
			assert.Equal(t, tt.flagged, st.Flagged)
			assert.Equal(t, tt.outlined, st.Outlined)
		})
	}
	assert.Equal(t, "A", StyleOf(models.MapMarker{Name: "anna"}).Initial)
}

func TestClusterSizeFor(t *testing.T) {
	assert.Equal(t, ClusterSize{Class: "small", Pixels: 40}, ClusterSizeFor(4))
	assert.Equal(t, ClusterSize{Class: "medium", Pixels: 50}, ClusterSizeFor(5))
	assert.Equal(t, ClusterSize{Class: "medium", Pixels: 50}, ClusterSizeFor(9))
	assert.Equal(t, ClusterSize{Class: "large", Pixels: 60}, ClusterSizeFor(10))
}
