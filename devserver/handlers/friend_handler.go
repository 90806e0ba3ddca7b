package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/middleware"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/store"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

type FriendHandler struct {
	store store.Store
}

func NewFriendHandler(s store.Store) *FriendHandler {
	return &FriendHandler{store: s}
}

func (h *FriendHandler) friends(ctx context.Context, userID string) ([]models.User, error) {
	ids, err := h.store.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return h.store.UsersByIDs(ctx, ids)
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	friends, err := h.friends(r.Context(), user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, friends)
}

// Map returns located friends without group data.
func (h *FriendHandler) Map(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	friends, err := h.friends(r.Context(), user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	markers := []models.MapMarker{}
	for _, f := range friends {
		markers = append(markers, registeredMarkers(f, nil)...)
	}
	middleware.WriteJSON(w, markers)
}

// MapGrouped returns registered and imported markers with their group memberships.
func (h *FriendHandler) MapGrouped(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	groups, err := h.store.ListGroups(ctx, user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	userGroups, importedGroups := membershipIndex(groups)

	friends, err := h.friends(ctx, user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	markers := []models.MapMarker{}
	for _, f := range friends {
		markers = append(markers, registeredMarkers(f, userGroups[f.UserID])...)
	}

	imported, err := h.store.ListImported(ctx, user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	for _, f := range imported {
		if f.Located() {
			markers = append(markers, f.Marker(importedGroups[f.FriendID]))
		}
	}
	middleware.WriteJSON(w, markers)
}

// membershipIndex maps member ids to group refs, one lookup per namespace: member_ids for users and
// imported_member_ids for imported friends.
func membershipIndex(groups []models.Group) (users, imported map[string][]models.GroupRef) {
	users = map[string][]models.GroupRef{}
	imported = map[string][]models.GroupRef{}
	for _, g := range groups {
		for _, id := range g.MemberIDs {
			users[id] = append(users[id], g.Ref())
		}
		for _, id := range g.ImportedMemberIDs {
			imported[id] = append(imported[id], g.Ref())
		}
	}
	return users, imported
}

// registeredMarkers emits an active marker for the friend's home city and a competent marker per known city.
func registeredMarkers(f models.User, groups []models.GroupRef) []models.MapMarker {
	if groups == nil {
		groups = []models.GroupRef{}
	}
	color := ""
	if len(groups) > 0 {
		color = groups[0].Color
	}
	var out []models.MapMarker
	if loc, ok := f.ActiveLocation(); ok {
		out = append(out, models.MapMarker{
			UserID:          f.UserID,
			Name:            f.Name,
			Picture:         f.Picture,
			Bio:             f.Bio,
			ActiveCity:      f.ActiveCity,
			Lat:             loc.Lat,
			Lng:             loc.Lng,
			CompetentCities: f.CompetentCities,
			Availability:    f.Availability,
			MarkerType:      models.MarkerActive,
			Groups:          groups,
			MarkerColor:     color,
		})
	}
	for _, c := range f.CompetentCities {
		if c.Lat == 0 && c.Lng == 0 {
			continue
		}
		out = append(out, models.MapMarker{
			UserID:       f.UserID,
			Name:         f.Name,
			Picture:      f.Picture,
			Bio:          f.Bio,
			CityName:     c.Name,
			Lat:          c.Lat,
			Lng:          c.Lng,
			Availability: f.Availability,
			MarkerType:   models.MarkerCompetent,
			Groups:       groups,
			MarkerColor:  color,
		})
	}
	return out
}

func (h *FriendHandler) Requests(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	pending, err := h.store.PendingTo(r.Context(), user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	out := []models.FriendRequest{}
	for _, p := range pending {
		sender, err := h.store.GetUser(r.Context(), p.UserID)
		if err != nil {
			continue
		}
		out = append(out, models.FriendRequest{FriendshipID: p.FriendshipID, FromUser: sender, CreatedAt: p.CreatedAt})
	}
	middleware.WriteJSON(w, out)
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.SendFriendRequest
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	ctx := r.Context()
	if input.ToUserID == user.UserID {
		middleware.WriteError(w, badRequest("Cannot friend yourself"))
		return
	}
	if _, err := h.store.GetUser(ctx, input.ToUserID); err != nil {
		middleware.WriteError(w, orNotFound(err, "User not found"))
		return
	}
	_, err := h.store.FindFriendship(ctx, user.UserID, input.ToUserID)
	switch {
	case err == nil:
		middleware.WriteError(w, badRequest("Friendship already exists"))
		return
	case err != errors.ErrNotFound:
		middleware.WriteError(w, err)
		return
	}

	f := models.Friendship{
		FriendshipID: store.NewID("friendship"),
		UserID:       user.UserID,
		FriendID:     input.ToUserID,
		Status:       models.FriendshipPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.InsertFriendship(ctx, f); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, models.FriendRequestSent{Message: "Friend request sent", FriendshipID: f.FriendshipID})
}

// Accept succeeds only for the recipient of a pending request.
func (h *FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	err := h.store.AcceptFriendship(r.Context(), mux.Vars(r)["friendship_id"], user.UserID, time.Now().UTC())
	if err != nil {
		middleware.WriteError(w, orNotFound(err, "Friend request not found"))
		return
	}
	middleware.WriteJSON(w, message("Friend request accepted"))
}

func (h *FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteFriendship(r.Context(), user.UserID, mux.Vars(r)["friend_id"]); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, message("Friend removed"))
}
