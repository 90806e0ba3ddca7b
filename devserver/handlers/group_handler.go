package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/middleware"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/store"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

type GroupHandler struct {
	store store.Store
}

func NewGroupHandler(s store.Store) *GroupHandler {
	return &GroupHandler{store: s}
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	groups, err := h.store.ListGroups(r.Context(), user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, groups)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	g, err := h.store.GetGroup(r.Context(), user.UserID, mux.Vars(r)["group_id"])
	if err != nil {
		middleware.WriteError(w, orNotFound(err, "Group not found"))
		return
	}
	middleware.WriteJSON(w, g)
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.GroupInput
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		middleware.WriteError(w, badRequest("Group name is required"))
		return
	}
	color := input.Color
	if color == "" {
		color = models.DefaultGroupColor
	}
	if !models.IsPaletteColor(color) {
		middleware.WriteError(w, badRequest("Invalid group color"))
		return
	}

	ctx := r.Context()
	count, err := h.store.CountGroups(ctx, user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if count >= models.MaxGroupsPerUser {
		middleware.WriteError(w, badRequest(fmt.Sprintf("Maximum %d groups allowed", models.MaxGroupsPerUser)))
		return
	}

	g := models.Group{
		GroupID:           store.NewID("group"),
		OwnerID:           user.UserID,
		Name:              name,
		Color:             color,
		Icon:              input.Icon,
		MemberIDs:         []string{},
		ImportedMemberIDs: []string{},
		CreatedAt:         time.Now().UTC(),
	}
	if err := h.store.InsertGroup(ctx, g); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, models.GroupCreated{Message: "Group created", GroupID: g.GroupID})
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.GroupUpdate
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		middleware.WriteError(w, badRequest("Group name is required"))
		return
	}
	if input.Color != nil && !models.IsPaletteColor(*input.Color) {
		middleware.WriteError(w, badRequest("Invalid group color"))
		return
	}
	g, err := h.store.UpdateGroup(r.Context(), user.UserID, mux.Vars(r)["group_id"], input)
	if err != nil {
		middleware.WriteError(w, orNotFound(err, "Group not found"))
		return
	}
	middleware.WriteJSON(w, g)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteGroup(r.Context(), user.UserID, mux.Vars(r)["group_id"]); err != nil {
		middleware.WriteError(w, orNotFound(err, "Group not found"))
		return
	}
	middleware.WriteJSON(w, message("Group deleted"))
}

// AddMember checks that a user member is a friend of the owner and that an imported member belongs to the owner.
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.GroupMemberInput
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	ctx := r.Context()
	groupID := mux.Vars(r)["group_id"]
	if _, err := h.store.GetGroup(ctx, user.UserID, groupID); err != nil {
		middleware.WriteError(w, orNotFound(err, "Group not found"))
		return
	}

	switch input.MemberType {
	case models.MemberUser:
		f, err := h.store.FindFriendship(ctx, user.UserID, input.MemberID)
		if err != nil || f.Status != models.FriendshipAccepted {
			middleware.WriteError(w, badRequest("User is not a friend"))
			return
		}
	case models.MemberImported:
		if _, err := h.store.GetImported(ctx, user.UserID, input.MemberID); err != nil {
			middleware.WriteError(w, badRequest("Imported friend not found"))
			return
		}
	default:
		middleware.WriteError(w, badRequest("Invalid member_type"))
		return
	}

	if err := h.store.AddGroupMember(ctx, groupID, input.MemberID, input.MemberType); err != nil {
		middleware.WriteError(w, orNotFound(err, "Group not found"))
		return
	}
	middleware.WriteJSON(w, message("Member added to group"))
}

// RemoveMember pulls the id from both member lists.
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	if err := h.store.RemoveGroupMember(r.Context(), user.UserID, vars["group_id"], vars["member_id"]); err != nil {
		middleware.WriteError(w, orNotFound(err, "Group not found"))
		return
	}
	middleware.WriteJSON(w, message("Member removed from group"))
}
