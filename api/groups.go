package api

import (
	"context"
	"net/http"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// GroupsAPI covers /api/groups.
type GroupsAPI struct {
	c *Client
}

func (g *GroupsAPI) List(ctx context.Context) ([]models.Group, error) {
	var out []models.Group
	if err := g.c.getJSON(ctx, "/api/groups", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *GroupsAPI) Get(ctx context.Context, groupID string) (*models.Group, error) {
	var out models.Group
	if err := g.c.getJSON(ctx, "/api/groups/{group_id}", &out, groupID); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *GroupsAPI) Create(ctx context.Context, in models.GroupInput) (*models.GroupCreated, error) {
	var out models.GroupCreated
	if err := g.c.doJSON(ctx, http.MethodPost, "/api/groups", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *GroupsAPI) Update(ctx context.Context, groupID string, in models.GroupUpdate) error {
	return g.c.doJSON(ctx, http.MethodPut, "/api/groups/{group_id}", in, nil, groupID)
}

func (g *GroupsAPI) Delete(ctx context.Context, groupID string) error {
	return g.c.doJSON(ctx, http.MethodDelete, "/api/groups/{group_id}", nil, nil, groupID)
}

// AddMember adds a registered friend or imported friend to a group.
func (g *GroupsAPI) AddMember(ctx context.Context, groupID, memberID string, kind models.MemberType) error {
	in := models.GroupMemberInput{MemberID: memberID, MemberType: kind}
	return g.c.doJSON(ctx, http.MethodPost, "/api/groups/{group_id}/members", in, nil, groupID)
}

// RemoveMember removes memberID from the group, whichever namespace it belongs to.
func (g *GroupsAPI) RemoveMember(ctx context.Context, groupID, memberID string) error {
	return g.c.doJSON(ctx, http.MethodDelete, "/api/groups/{group_id}/members/{member_id}", nil, nil, groupID, memberID)
}
