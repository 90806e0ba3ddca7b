package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/middleware"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/session"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/store"
)

// Deps is what the router needs to build every handler.
type Deps struct {
	Store          store.Store
	Sessions       *session.Manager
	Identity       session.Provider
	Geocoder       Geocoder
	AllowedOrigins []string
}

// NewRouter wires the /api routes. Everything except health, session exchange and logout requires a session.
func NewRouter(d Deps) *mux.Router {
	authHandler := NewAuthHandler(d.Sessions, d.Identity)
	userHandler := NewUserHandler(d.Store)
	friendHandler := NewFriendHandler(d.Store)
	importedHandler := NewImportedHandler(d.Store, d.Geocoder)
	geocodeHandler := NewGeocodeHandler(d.Geocoder)
	groupHandler := NewGroupHandler(d.Store)
	meetupHandler := NewMeetupHandler(d.Store)
	messageHandler := NewMessageHandler(d.Store)
	accountHandler := NewAccountHandler(d.Store, d.Geocoder)

	r := mux.NewRouter()
	r.Use(middleware.ErrorMiddleware())
	r.Use(middleware.CrossOrigin(d.AllowedOrigins))
	r.Use(middleware.MetricsMiddleware())

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	requireSession := middleware.SessionMiddleware(d.Sessions)
	protected := func(h http.HandlerFunc) http.Handler {
		return requireSession(h)
	}

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/health", Health).Methods("GET", "OPTIONS")
	api.HandleFunc("/auth/session", authHandler.CreateSession).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	// Auth and users
	api.Handle("/auth/me", protected(authHandler.Me)).Methods("GET", "OPTIONS")
	api.Handle("/users/me", protected(userHandler.UpdateMe)).Methods("PUT", "OPTIONS")
	api.Handle("/users/me/stats", protected(accountHandler.Stats)).Methods("GET", "OPTIONS")
	api.Handle("/users/me/export", protected(accountHandler.Export)).Methods("GET", "OPTIONS")
	api.Handle("/users/{user_id}", protected(userHandler.GetUser)).Methods("GET", "OPTIONS")
	api.Handle("/search/users", protected(userHandler.Search)).Methods("GET", "OPTIONS")

	// Friends
	api.Handle("/friends", protected(friendHandler.List)).Methods("GET", "OPTIONS")
	api.Handle("/friends/map", protected(friendHandler.Map)).Methods("GET", "OPTIONS")
	api.Handle("/friends/map/grouped", protected(friendHandler.MapGrouped)).Methods("GET", "OPTIONS")
	api.Handle("/friends/requests", protected(friendHandler.Requests)).Methods("GET", "OPTIONS")
	api.Handle("/friends/request", protected(friendHandler.SendRequest)).Methods("POST", "OPTIONS")
	api.Handle("/friends/accept/{friendship_id}", protected(friendHandler.Accept)).Methods("POST", "OPTIONS")
	api.Handle("/friends/{friend_id}", protected(friendHandler.Remove)).Methods("DELETE", "OPTIONS")

	// Imported friends
	api.Handle("/imported-friends", protected(importedHandler.List)).Methods("GET", "OPTIONS")
	api.Handle("/imported-friends", protected(importedHandler.Add)).Methods("POST")
	api.Handle("/imported-friends/map", protected(importedHandler.Map)).Methods("GET", "OPTIONS")
	api.Handle("/imported-friends/csv", protected(importedHandler.ImportCSV)).Methods("POST", "OPTIONS")
	api.Handle("/imported-friends/{friend_id}", protected(importedHandler.Update)).Methods("PUT", "OPTIONS")
	api.Handle("/imported-friends/{friend_id}", protected(importedHandler.Delete)).Methods("DELETE")
	api.Handle("/imported-friends/{friend_id}/geocode", protected(importedHandler.Geocode)).Methods("POST", "OPTIONS")
	api.Handle("/geocode", protected(geocodeHandler.Geocode)).Methods("POST", "OPTIONS")

	// Groups
	api.Handle("/groups", protected(groupHandler.List)).Methods("GET", "OPTIONS")
	api.Handle("/groups", protected(groupHandler.Create)).Methods("POST")
	api.Handle("/groups/{group_id}", protected(groupHandler.Get)).Methods("GET", "OPTIONS")
	api.Handle("/groups/{group_id}", protected(groupHandler.Update)).Methods("PUT")
	api.Handle("/groups/{group_id}", protected(groupHandler.Delete)).Methods("DELETE")
	api.Handle("/groups/{group_id}/members", protected(groupHandler.AddMember)).Methods("POST", "OPTIONS")
	api.Handle("/groups/{group_id}/members/{member_id}", protected(groupHandler.RemoveMember)).Methods("DELETE", "OPTIONS")

	// Meetups
	api.Handle("/meetups", protected(meetupHandler.List)).Methods("GET", "OPTIONS")
	api.Handle("/meetups", protected(meetupHandler.Create)).Methods("POST")
	api.Handle("/meetups/{meetup_id}/join", protected(meetupHandler.Join)).Methods("POST", "OPTIONS")
	api.Handle("/meetups/{meetup_id}", protected(meetupHandler.Delete)).Methods("DELETE", "OPTIONS")

	// Messages
	api.Handle("/messages", protected(messageHandler.Send)).Methods("POST", "OPTIONS")
	api.Handle("/messages/inbox", protected(messageHandler.Inbox)).Methods("GET", "OPTIONS")
	api.Handle("/messages/sent", protected(messageHandler.Sent)).Methods("GET", "OPTIONS")
	api.Handle("/messages/{message_id}/read", protected(messageHandler.MarkRead)).Methods("PUT", "OPTIONS")

	return r
}
