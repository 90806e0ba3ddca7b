package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/middleware"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/store"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

type MeetupHandler struct {
	store store.Store
}

func NewMeetupHandler(s store.Store) *MeetupHandler {
	return &MeetupHandler{store: s}
}

// List returns meetups the user created, was invited to, or attends.
func (h *MeetupHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	meetups, err := h.store.MeetupsFor(r.Context(), user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, meetups)
}

func (h *MeetupHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.MeetupInput
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.City) == "" || strings.TrimSpace(input.Date) == "" {
		middleware.WriteError(w, badRequest("title, city and date are required"))
		return
	}
	invited := input.InvitedUserIDs
	if invited == nil {
		invited = []string{}
	}

	m := models.Meetup{
		MeetupID:       store.NewID("meetup"),
		CreatorID:      user.UserID,
		Title:          strings.TrimSpace(input.Title),
		City:           strings.TrimSpace(input.City),
		CityLat:        input.CityLat,
		CityLng:        input.CityLng,
		Date:           input.Date,
		Description:    input.Description,
		InvitedUserIDs: invited,
		AttendeeIDs:    []string{user.UserID},
		Status:         "active",
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.store.InsertMeetup(r.Context(), m); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, models.MeetupCreated{Message: "Meetup created", MeetupID: m.MeetupID})
}

func (h *MeetupHandler) Join(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.store.JoinMeetup(r.Context(), mux.Vars(r)["meetup_id"], user.UserID); err != nil {
		middleware.WriteError(w, orNotFound(err, "Meetup not found"))
		return
	}
	middleware.WriteJSON(w, message("Joined meetup"))
}

// Delete is only allowed for the creator.
func (h *MeetupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteMeetup(r.Context(), mux.Vars(r)["meetup_id"], user.UserID); err != nil {
		middleware.WriteError(w, orNotFound(err, "Meetup not found or not authorized"))
		return
	}
	middleware.WriteJSON(w, message("Meetup deleted"))
}
