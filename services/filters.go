package services

import (
	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// PartitionMarkers splits the grouped map collection by marker type: active and competent markers go to
// registered, imported markers to imported. Both results are fresh slices; the input is never modified.
func PartitionMarkers(markers []models.MapMarker) (registered, imported []models.MapMarker) {
	registered = []models.MapMarker{}
	imported = []models.MapMarker{}
	for _, m := range markers {
		switch m.MarkerType {
		case models.MarkerImported:
			imported = append(imported, m)
		case models.MarkerActive, models.MarkerCompetent:
			registered = append(registered, m)
		}
	}
	return registered, imported
}

// FilterFriends returns the registered markers visible under filter.
func FilterFriends(friends []models.MapMarker, filter models.Filter) []models.MapMarker {
	out := []models.MapMarker{}
	switch filter {
	case models.FilterAll:
		return append(out, friends...)
	case models.FilterImported:
		return out
	case models.FilterActive, models.FilterCompetent:
		for _, f := range friends {
			if string(f.MarkerType) == string(filter) {
				out = append(out, f)
			}
		}
		return out
	}
	for _, f := range friends {
		if f.InGroup(string(filter)) {
			out = append(out, f)
		}
	}
	return out
}

// FilterImportedFriends returns the imported markers visible under filter.
func FilterImportedFriends(imported []models.MapMarker, filter models.Filter) []models.MapMarker {
	out := []models.MapMarker{}
	switch filter {
	case models.FilterAll, models.FilterImported:
		return append(out, imported...)
	case models.FilterActive, models.FilterCompetent:
		return out
	}
	for _, f := range imported {
		if f.InGroup(string(filter)) {
			out = append(out, f)
		}
	}
	return out
}

// FilterCounts summarizes how many markers each filter chip would show.
type FilterCounts struct {
	All       int
	Active    int
	Competent int
	Imported  int
	Groups    map[string]int
}

func CountFilters(friends, imported []models.MapMarker, groups []models.Group) FilterCounts {
	c := FilterCounts{
		All:      len(friends) + len(imported),
		Imported: len(imported),
		Groups:   make(map[string]int, len(groups)),
	}
	for _, f := range friends {
		switch f.MarkerType {
		case models.MarkerActive:
			c.Active++
		case models.MarkerCompetent:
			c.Competent++
		}
	}
	for _, g := range groups {
		f := models.GroupFilter(g.GroupID)
		c.Groups[g.GroupID] = len(FilterFriends(friends, f)) + len(FilterImportedFriends(imported, f))
	}
	return c
}
