package services

import "github.com/thebestitaly/mapyourfriends-emergent/models"

// MarkerStyle describes how a pin is drawn.
type MarkerStyle struct {
	Background string
	TextColor  string
	Outlined   bool
	Flagged    bool
	Initial    string
}

const (
	gradientImported = "linear-gradient(135deg, #EC4899, #A855F7)"
	gradientWarning  = "linear-gradient(135deg, #F59E0B, #EF4444)"
	gradientActive   = "linear-gradient(135deg, #06B6D4, #3B82F6)"
	colorCompetent   = "#06B6D4"
)

// StyleOf picks the pin appearance. A group color wins over the type-based look.
func StyleOf(m models.MapMarker) MarkerStyle {
	st := MarkerStyle{Initial: m.Initial(), TextColor: "#fff", Flagged: m.Flagged()}
	color := m.MarkerColor
	if color == "" && len(m.Groups) > 0 {
		color = m.Groups[0].Color
	}
	switch {
	case color != "":
		st.Background = color
	case m.MarkerType == models.MarkerImported:
		if m.GeocodeStatus == models.GeocodeFailed || m.GeocodeStatus == models.GeocodeManual {
			st.Background = gradientWarning
		} else {
			st.Background = gradientImported
		}
	case m.MarkerType == models.MarkerActive:
		st.Background = gradientActive
	default:
		st.Background = "transparent"
		st.TextColor = colorCompetent
		st.Outlined = true
	}
	return st
}

// ClusterSize is the size class of a marker cluster icon.
type ClusterSize struct {
	Class  string
	Pixels int
}

// ClusterSizeFor buckets a cluster by how many markers it holds.
func ClusterSizeFor(count int) ClusterSize {
	switch {
	case count >= 10:
		return ClusterSize{Class: "large", Pixels: 60}
	case count >= 5:
		return ClusterSize{Class: "medium", Pixels: 50}
	}
	return ClusterSize{Class: "small", Pixels: 40}
}
