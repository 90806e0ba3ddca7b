package models

import (
	"errors"
	"strings"
)

// Filter selects which markers the map shows. It is one of the named filters or a group id.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompetent Filter = "competent"
	FilterImported  Filter = "imported"
)

var errEmptyFilter = errors.New("filter must not be empty")

// ParseFilter trims s and returns it as a Filter. Anything other than a named filter is a group id.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errEmptyFilter
	}
	return Filter(s), nil
}

// GroupFilter builds the filter for a single group.
func GroupFilter(groupID string) Filter {
	return Filter(groupID)
}

// IsGroup reports whether the filter names a group rather than a built-in selection.
func (f Filter) IsGroup() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompetent, FilterImported, "":
		return false
	}
	return true
}
