package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/middleware"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/store"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

const searchLimit = 20

type UserHandler struct {
	store store.Store
}

func NewUserHandler(s store.Store) *UserHandler {
	return &UserHandler{store: s}
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input models.ProfileUpdate
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	for _, tag := range input.Availability {
		if !models.IsValidAvailability(tag) {
			middleware.WriteError(w, badRequest("Invalid availability: "+tag))
			return
		}
	}
	updated, err := h.store.UpdateUser(r.Context(), user.UserID, input)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, updated)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	u, err := h.store.GetUser(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		middleware.WriteError(w, orNotFound(err, "User not found"))
		return
	}
	middleware.WriteJSON(w, u)
}

// Search matches name or email case-insensitively, never returning the caller.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		middleware.WriteJSON(w, []models.User{})
		return
	}
	users, err := h.store.SearchUsers(r.Context(), user.UserID, q, searchLimit)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, users)
}
