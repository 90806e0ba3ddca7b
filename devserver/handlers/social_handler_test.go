package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

func TestMeetupVisibility(t *testing.T) {
	s := newTestServer(t)
	anna, annaUser := s.login(t, "sid_anna")
	bruno, brunoUser := s.login(t, "sid_bruno")
	carla, _ := s.login(t, "sid_carla")

	rec := s.do(t, http.MethodPost, "/api/meetups", anna, models.MeetupInput{
		Title: "Aperitivo", City: "Milano", Date: "2026-11-01", InvitedUserIDs: []string{brunoUser.UserID},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created models.MeetupCreated
	decodeBody(t, rec, &created)
	assert.Equal(t, "Meetup created", created.Message)

	visible := func(token string) []models.Meetup {
		rec := s.do(t, http.MethodGet, "/api/meetups", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var out []models.Meetup
		decodeBody(t, rec, &out)
		return out
	}

	mine := visible(anna)
	require.Len(t, mine, 1)
	assert.Equal(t, []string{annaUser.UserID}, mine[0].AttendeeIDs)
	assert.Equal(t, "active", mine[0].Status)
	assert.Len(t, visible(bruno), 1)
	assert.Empty(t, visible(carla))

	rec = s.do(t, http.MethodPost, "/api/meetups/"+created.MeetupID+"/join", carla, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, visible(carla), 1)

	rec = s.do(t, http.MethodPost, "/api/meetups/meetup_missing/join", carla, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Meetup not found", detailOf(t, rec))

	rec = s.do(t, http.MethodDelete, "/api/meetups/"+created.MeetupID, bruno, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Meetup not found or not authorized", detailOf(t, rec))

	rec = s.do(t, http.MethodDelete, "/api/meetups/"+created.MeetupID, anna, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, visible(anna))
}

func TestCreateMeetupRequiresFields(t *testing.T) {
	s := newTestServer(t)
	anna, _ := s.login(t, "sid_anna")

	rec := s.do(t, http.MethodPost, "/api/meetups", anna, models.MeetupInput{Title: "No date", City: "Roma"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title, city and date are required", detailOf(t, rec))
}

func TestMessages(t *testing.T) {
	s := newTestServer(t)
	anna, annaUser := s.login(t, "sid_anna")
	bruno, brunoUser := s.login(t, "sid_bruno")

	rec := s.do(t, http.MethodPost, "/api/messages", anna, models.MessageInput{ToUserID: brunoUser.UserID, Content: "Ciao!"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sent models.MessageSent
	decodeBody(t, rec, &sent)
	assert.Equal(t, "Message sent", sent.Message)

	rec = s.do(t, http.MethodGet, "/api/messages/inbox", bruno, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox []models.InboxMessage
	decodeBody(t, rec, &inbox)
	require.Len(t, inbox, 1)
	assert.Equal(t, sent.MessageID, inbox[0].MessageID)
	assert.Equal(t, "text", inbox[0].MessageType)
	assert.False(t, inbox[0].Read)
	require.NotNil(t, inbox[0].FromUser)
	assert.Equal(t, annaUser.UserID, inbox[0].FromUser.UserID)
	assert.Equal(t, 1, models.UnreadCount(inbox))

	rec = s.do(t, http.MethodGet, "/api/messages/sent", anna, nil)
	var outbox []models.InboxMessage
	decodeBody(t, rec, &outbox)
	require.Len(t, outbox, 1)
	assert.Equal(t, "Ciao!", outbox[0].Content)

	// Only the recipient can mark a message read.
	s.do(t, http.MethodPut, "/api/messages/"+sent.MessageID+"/read", anna, nil)
	rec = s.do(t, http.MethodGet, "/api/messages/inbox", bruno, nil)
	decodeBody(t, rec, &inbox)
	assert.False(t, inbox[0].Read)

	rec = s.do(t, http.MethodPut, "/api/messages/"+sent.MessageID+"/read", bruno, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/messages/inbox", bruno, nil)
	decodeBody(t, rec, &inbox)
	assert.True(t, inbox[0].Read)
	assert.Equal(t, 0, models.UnreadCount(inbox))
}

func TestSendMessageValidation(t *testing.T) {
	s := newTestServer(t)
	anna, _ := s.login(t, "sid_anna")
	_, brunoUser := s.login(t, "sid_bruno")

	rec := s.do(t, http.MethodPost, "/api/messages", anna, models.MessageInput{ToUserID: brunoUser.UserID, Content: "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "content is required", detailOf(t, rec))

	rec = s.do(t, http.MethodPost, "/api/messages", anna, models.MessageInput{ToUserID: "user_missing", Content: "hi"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", detailOf(t, rec))
}

func TestUserProfileAndSearch(t *testing.T) {
	s := newTestServer(t)
	anna, annaUser := s.login(t, "sid_anna")
	_, brunoUser := s.login(t, "sid_bruno")

	bio := "Travels a lot"
	rec := s.do(t, http.MethodPut, "/api/users/me", anna, models.ProfileUpdate{Bio: &bio, Availability: []string{"Coffee", "Advice"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.User
	decodeBody(t, rec, &me)
	assert.Equal(t, "Travels a lot", me.Bio)
	assert.Equal(t, []string{"Coffee", "Advice"}, me.Availability)

	rec = s.do(t, http.MethodPut, "/api/users/me", anna, models.ProfileUpdate{Availability: []string{"Dancing"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid availability: Dancing", detailOf(t, rec))

	rec = s.do(t, http.MethodGet, "/api/users/"+brunoUser.UserID, anna, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var other models.User
	decodeBody(t, rec, &other)
	assert.Equal(t, "Bruno", other.Name)

	rec = s.do(t, http.MethodGet, "/api/users/user_missing", anna, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	search := func(q string) []models.User {
		rec := s.do(t, http.MethodGet, "/api/search/users?q="+q, anna, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var out []models.User
		decodeBody(t, rec, &out)
		return out
	}
	found := search("example.com")
	require.Len(t, found, 1)
	assert.Equal(t, brunoUser.UserID, found[0].UserID)
	assert.NotEqual(t, annaUser.UserID, found[0].UserID)
	assert.Len(t, search("BRU"), 1)
	assert.Empty(t, search("anna"))
	assert.Empty(t, search(""))
}
