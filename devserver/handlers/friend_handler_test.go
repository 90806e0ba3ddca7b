package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/store"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

func TestSendFriendRequestValidation(t *testing.T) {
	s := newTestServer(t)
	anna, annaUser := s.login(t, "sid_anna")
	bruno, brunoUser := s.login(t, "sid_bruno")

	tests := []struct {
		name   string
		token  string
		to     string
		status int
		detail string
	}{
		{"self", anna, annaUser.UserID, http.StatusBadRequest, "Cannot friend yourself"},
		{"unknown user", anna, "user_missing", http.StatusNotFound, "User not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/friends/request", tt.token, models.SendFriendRequest{ToUserID: tt.to})
			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.detail, detailOf(t, rec))
		})
	}

	rec := s.do(t, http.MethodPost, "/api/friends/request", anna, models.SendFriendRequest{ToUserID: brunoUser.UserID})
	require.Equal(t, http.StatusOK, rec.Code)

	// Either direction counts as an existing friendship.
	rec = s.do(t, http.MethodPost, "/api/friends/request", bruno, models.SendFriendRequest{ToUserID: annaUser.UserID})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Friendship already exists", detailOf(t, rec))
}

func TestFriendRequestLifecycle(t *testing.T) {
	s := newTestServer(t)
	anna, annaUser := s.login(t, "sid_anna")
	bruno, brunoUser := s.login(t, "sid_bruno")

	rec := s.do(t, http.MethodPost, "/api/friends/request", anna, models.SendFriendRequest{ToUserID: brunoUser.UserID})
	require.Equal(t, http.StatusOK, rec.Code)
	var sent models.FriendRequestSent
	decodeBody(t, rec, &sent)
	assert.Equal(t, "Friend request sent", sent.Message)
	assert.Contains(t, sent.FriendshipID, "friendship_")

	rec = s.do(t, http.MethodGet, "/api/friends/requests", bruno, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var requests []models.FriendRequest
	decodeBody(t, rec, &requests)
	require.Len(t, requests, 1)
	assert.Equal(t, sent.FriendshipID, requests[0].FriendshipID)
	assert.Equal(t, annaUser.UserID, requests[0].FromUser.UserID)
	assert.Equal(t, "Anna", requests[0].FromUser.Name)

	// Only the recipient may accept.
	rec = s.do(t, http.MethodPost, "/api/friends/accept/"+sent.FriendshipID, anna, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Friend request not found", detailOf(t, rec))

	rec = s.do(t, http.MethodPost, "/api/friends/accept/"+sent.FriendshipID, bruno, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msg models.StatusMessage
	decodeBody(t, rec, &msg)
	assert.Equal(t, "Friend request accepted", msg.Message)

	// Accepting twice fails.
	rec = s.do(t, http.MethodPost, "/api/friends/accept/"+sent.FriendshipID, bruno, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, tc := range []struct {
		token string
		want  string
	}{{anna, brunoUser.UserID}, {bruno, annaUser.UserID}} {
		rec = s.do(t, http.MethodGet, "/api/friends", tc.token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var friends []models.User
		decodeBody(t, rec, &friends)
		require.Len(t, friends, 1)
		assert.Equal(t, tc.want, friends[0].UserID)
	}

	rec = s.do(t, http.MethodGet, "/api/friends/requests", bruno, nil)
	decodeBody(t, rec, &requests)
	assert.Empty(t, requests)

	rec = s.do(t, http.MethodDelete, "/api/friends/"+annaUser.UserID, bruno, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/friends", anna, nil)
	var friends []models.User
	decodeBody(t, rec, &friends)
	assert.Empty(t, friends)
}

func TestFriendsMapMarkers(t *testing.T) {
	s := newTestServer(t)
	anna, _ := s.login(t, "sid_anna")
	bruno, brunoUser := s.login(t, "sid_bruno")
	carla, carlaUser := s.login(t, "sid_carla")
	s.befriend(t, anna, bruno, brunoUser.UserID)
	s.befriend(t, anna, carla, carlaUser.UserID)

	milano := "Milano"
	lat, lng := 45.4642, 9.19
	rec := s.do(t, http.MethodPut, "/api/users/me", bruno, models.ProfileUpdate{
		ActiveCity:    &milano,
		ActiveCityLat: &lat,
		ActiveCityLng: &lng,
		CompetentCities: []models.CompetentCity{
			{Name: "Roma", Lat: 41.9028, Lng: 12.4964},
			{Name: "Nowhere"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/friends/map", anna, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var markers []models.MapMarker
	decodeBody(t, rec, &markers)

	// Carla has no location; Bruno's uncoordinated competent city is skipped.
	require.Len(t, markers, 2)
	assert.Equal(t, models.MarkerActive, markers[0].MarkerType)
	assert.Equal(t, "Milano", markers[0].ActiveCity)
	assert.InDelta(t, 45.4642, markers[0].Lat, 1e-9)
	assert.Equal(t, models.MarkerCompetent, markers[1].MarkerType)
	assert.Equal(t, "Roma", markers[1].CityName)
	for _, m := range markers {
		assert.Equal(t, brunoUser.UserID, m.UserID)
		assert.NotNil(t, m.Groups)
	}
}

func TestGroupedMapCombinesBothNamespaces(t *testing.T) {
	s := newTestServer(t)
	anna, _ := s.login(t, "sid_anna")
	bruno, brunoUser := s.login(t, "sid_bruno")
	s.befriend(t, anna, bruno, brunoUser.UserID)

	roma := "Roma"
	lat, lng := 41.9028, 12.4964
	rec := s.do(t, http.MethodPut, "/api/users/me", bruno, models.ProfileUpdate{ActiveCity: &roma, ActiveCityLat: &lat, ActiveCityLng: &lng})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/imported-friends", anna, models.ImportedFriendInput{FirstName: "Mario", LastName: "Rossi", City: "Milano"})
	require.Equal(t, http.StatusOK, rec.Code)
	var mario models.ImportedFriend
	decodeBody(t, rec, &mario)

	rec = s.do(t, http.MethodPost, "/api/imported-friends", anna, models.ImportedFriendInput{FirstName: "Lost", City: "Atlantide"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/groups", anna, models.GroupInput{Name: "Lavoro", Color: "#3B82F6"})
	require.Equal(t, http.StatusOK, rec.Code)
	var created models.GroupCreated
	decodeBody(t, rec, &created)

	for _, m := range []models.GroupMemberInput{
		{MemberID: brunoUser.UserID, MemberType: models.MemberUser},
		{MemberID: mario.FriendID, MemberType: models.MemberImported},
	} {
		rec = s.do(t, http.MethodPost, "/api/groups/"+created.GroupID+"/members", anna, m)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/friends/map/grouped", anna, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var markers []models.MapMarker
	decodeBody(t, rec, &markers)

	require.Len(t, markers, 2)
	assert.Equal(t, brunoUser.UserID, markers[0].UserID)
	assert.Equal(t, models.MarkerActive, markers[0].MarkerType)
	assert.Equal(t, mario.FriendID, markers[1].FriendID)
	assert.Equal(t, models.MarkerImported, markers[1].MarkerType)
	assert.Equal(t, "Mario Rossi", markers[1].Name)
	for _, m := range markers {
		require.Len(t, m.Groups, 1)
		assert.Equal(t, created.GroupID, m.Groups[0].GroupID)
		assert.Equal(t, "#3B82F6", m.MarkerColor)
	}
}

type brokenFriendships struct {
	store.Store
	inserts int
}

func (b *brokenFriendships) FindFriendship(context.Context, string, string) (models.Friendship, error) {
	return models.Friendship{}, errors.Wrap(stderrors.New("connection reset by peer"), "DB_ERROR", "database operation failed", http.StatusInternalServerError)
}

func (b *brokenFriendships) InsertFriendship(ctx context.Context, f models.Friendship) error {
	b.inserts++
	return b.Store.InsertFriendship(ctx, f)
}

func TestSendFriendRequestSurfacesLookupFailure(t *testing.T) {
	broken := &brokenFriendships{}
	s := newWrappedServer(t, func(st store.Store) store.Store {
		broken.Store = st
		return broken
	})
	anna, _ := s.login(t, "sid_anna")
	_, brunoUser := s.login(t, "sid_bruno")

	rec := s.do(t, http.MethodPost, "/api/friends/request", anna, models.SendFriendRequest{ToUserID: brunoUser.UserID})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "database operation failed", detailOf(t, rec))
	assert.Zero(t, broken.inserts)
}
