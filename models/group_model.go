package models

import "time"

// DefaultGroupColor is used when a group is created without a color.
const DefaultGroupColor = "#EC4899"

// MaxGroupsPerUser caps how many groups one user may own.
const MaxGroupsPerUser = 20

// GroupColor is a named entry of the group palette.
type GroupColor struct {
	Name  string
	Value string
}

// GroupPalette is the fixed set of colors a group may use.
var GroupPalette = []GroupColor{
	{Name: "Rosa", Value: "#EC4899"},
	{Name: "Viola", Value: "#8B5CF6"},
	{Name: "Blu", Value: "#3B82F6"},
	{Name: "Cyan", Value: "#06B6D4"},
	{Name: "Verde", Value: "#10B981"},
	{Name: "Arancione", Value: "#F59E0B"},
	{Name: "Rosso", Value: "#EF4444"},
	{Name: "Grigio", Value: "#6B7280"},
}

// IsPaletteColor reports whether value is one of GroupPalette.
func IsPaletteColor(value string) bool {
	for _, c := range GroupPalette {
		if c.Value == value {
			return true
		}
	}
	return false
}

// MemberType is the namespace of a group member id.
type MemberType string

const (
	MemberUser     MemberType = "user"
	MemberImported MemberType = "imported"
)

type Group struct {
	GroupID           string    `json:"group_id" bson:"group_id"`
	OwnerID           string    `json:"owner_id" bson:"owner_id"`
	Name              string    `json:"name" bson:"name"`
	Color             string    `json:"color" bson:"color"`
	Icon              *string   `json:"icon" bson:"icon"`
	MemberIDs         []string  `json:"member_ids" bson:"member_ids"`
	ImportedMemberIDs []string  `json:"imported_member_ids" bson:"imported_member_ids"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
}

// Ref is the short form embedded in marker membership lists.
func (g Group) Ref() GroupRef {
	return GroupRef{GroupID: g.GroupID, Name: g.Name, Color: g.Color}
}

// HasMember reports whether id is listed in the member set of the given namespace.
func (g Group) HasMember(id string, kind MemberType) bool {
	ids := g.MemberIDs
	if kind == MemberImported {
		ids = g.ImportedMemberIDs
	}
	for _, m := range ids {
		if m == id {
			return true
		}
	}
	return false
}

// GroupRef is a group membership entry on a friend or imported friend.
type GroupRef struct {
	GroupID string `json:"group_id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
}

// GroupInput is the body of POST /api/groups.
type GroupInput struct {
	Name  string  `json:"name"`
	Color string  `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

// GroupUpdate is the body of PUT /api/groups/{id}.
type GroupUpdate struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

// GroupMemberInput is the body of POST /api/groups/{id}/members.
type GroupMemberInput struct {
	MemberID   string     `json:"member_id"`
	MemberType MemberType `json:"member_type"`
}

// GroupCreated is the response of POST /api/groups.
type GroupCreated struct {
	Message string `json:"message"`
	GroupID string `json:"group_id"`
}
