package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/middleware"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/stats"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/store"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// AccountHandler serves the caller's own data: statistics with badges and the full data export.
type AccountHandler struct {
	store    store.Store
	geocoder Geocoder
}

func NewAccountHandler(s store.Store, g Geocoder) *AccountHandler {
	return &AccountHandler{store: s, geocoder: g}
}

func (h *AccountHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	registered, err := h.registeredFriends(r.Context(), user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	imported, err := h.store.ListImported(r.Context(), user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	s, err := h.stats(r.Context(), user.UserID, registered, imported)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, s)
}

// Export returns everything stored about the caller. Friends' emails are left out.
func (h *AccountHandler) Export(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	registered, err := h.registeredFriends(ctx, user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	imported, err := h.store.ListImported(ctx, user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	for i := range imported {
		imported[i].Name = imported[i].DisplayName()
	}
	groups, err := h.store.ListGroups(ctx, user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	sent, err := h.store.Sent(ctx, user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	received, err := h.store.Inbox(ctx, user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	meetups, err := h.store.MeetupsFor(ctx, user.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	s, err := h.stats(ctx, user.UserID, registered, imported)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	public := make([]models.User, 0, len(registered))
	for _, f := range registered {
		f.Email = ""
		public = append(public, f)
	}
	middleware.WriteJSON(w, models.UserExport{
		GeneratedAt:       time.Now().UTC(),
		Profile:           user,
		ImportedFriends:   imported,
		RegisteredFriends: public,
		Groups:            groups,
		MessagesSent:      sent,
		MessagesReceived:  received,
		Meetups:           meetups,
		Stats:             s,
	})
}

func (h *AccountHandler) registeredFriends(ctx context.Context, userID string) ([]models.User, error) {
	ids, err := h.store.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return h.store.UsersByIDs(ctx, ids)
}

func (h *AccountHandler) stats(ctx context.Context, userID string, registered []models.User, imported []models.ImportedFriend) (models.UserStats, error) {
	meetups, err := h.store.MeetupsFor(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}
	created := 0
	for _, m := range meetups {
		if m.CreatorID == userID {
			created++
		}
	}
	sent, err := h.store.Sent(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}

	resolved := map[string]string{}
	countryOf := func(city string) string {
		key := strings.ToLower(city)
		if c, ok := resolved[key]; ok {
			return c
		}
		c := h.geocoder.Geocode(ctx, city).Country
		resolved[key] = c
		return c
	}
	return stats.Compute(stats.Input{
		UserID:         userID,
		Registered:     registered,
		Imported:       imported,
		MeetupsCreated: created,
		MessagesSent:   len(sent),
		CountryOf:      countryOf,
		Now:            time.Now().UTC(),
	}), nil
}
