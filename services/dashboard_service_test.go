package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thebestitaly/mapyourfriends-emergent/mocks"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

type dashboardFixture struct {
	dash     *Dashboard
	auth     *mocks.AuthBackendMock
	friends  *mocks.FriendsBackendMock
	imported *mocks.ImportedFriendsBackendMock
	groups   *mocks.GroupsBackendMock
	users    *mocks.UsersBackendMock
	meetups  *mocks.MeetupsBackendMock
	messages *mocks.MessagesBackendMock
	geocoder *mocks.GeocoderMock
	notify   *RecordingNotifier
}

func newDashboardFixture() dashboardFixture {
	f := dashboardFixture{
		auth:     new(mocks.AuthBackendMock),
		friends:  new(mocks.FriendsBackendMock),
		imported: new(mocks.ImportedFriendsBackendMock),
		groups:   new(mocks.GroupsBackendMock),
		users:    new(mocks.UsersBackendMock),
		meetups:  new(mocks.MeetupsBackendMock),
		messages: new(mocks.MessagesBackendMock),
		geocoder: new(mocks.GeocoderMock),
		notify:   &RecordingNotifier{},
	}
	backend := Backend{
		Auth:            f.auth,
		Friends:         f.friends,
		ImportedFriends: f.imported,
		Groups:          f.groups,
		Users:           f.users,
		Meetups:         f.meetups,
		Messages:        f.messages,
		Geocoding:       f.geocoder,
	}
	f.dash = NewDashboard(backend, NewAuthState(f.auth, nil), f.notify)
	return f
}

// expectRefresh stubs one Reload round with empty results.
func (f dashboardFixture) expectRefresh() {
	f.imported.On("Map", mock.Anything).Return([]models.MapMarker{}, nil).Once()
	f.friends.On("List", mock.Anything).Return([]models.User{}, nil).Once()
	f.friends.On("MapGrouped", mock.Anything).Return([]models.MapMarker{}, nil).Once()
	f.friends.On("Requests", mock.Anything).Return([]models.FriendRequest{}, nil).Once()
	f.groups.On("List", mock.Anything).Return([]models.Group{}, nil).Once()
}

func TestMountResolvesThenLoads(t *testing.T) {
	f := newDashboardFixture()
	lat, lng := 45.4642, 9.19
	f.auth.On("Me", mock.Anything).Return(&models.User{UserID: "user_a", ActiveCityLat: &lat, ActiveCityLng: &lng}, nil).Once()
	f.friends.On("List", mock.Anything).Return([]models.User{}, nil).Once()
	f.friends.On("MapGrouped", mock.Anything).Return([]models.MapMarker{}, nil).Once()
	f.friends.On("Requests", mock.Anything).Return([]models.FriendRequest{{FriendshipID: "fr_1"}}, nil).Once()
	f.groups.On("List", mock.Anything).Return([]models.Group{}, nil).Once()
	f.meetups.On("List", mock.Anything).Return([]models.Meetup{{MeetupID: "meetup_1"}}, nil).Once()
	f.messages.On("Inbox", mock.Anything).Return([]models.InboxMessage{{MessageID: "msg_1"}, {MessageID: "msg_2", Read: true}}, nil).Once()

	user, err := f.dash.Mount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user_a", user.UserID)

	vp := f.dash.Map().Viewport()
	assert.Equal(t, models.LatLng{Lat: lat, Lng: lng}, vp.Center)
	assert.Equal(t, DefaultFlyZoom, vp.Zoom)
	assert.Len(t, f.dash.Meetups(), 1)
	assert.Equal(t, 2, f.dash.InboxCount())
}

func TestMountWithoutSessionLoadsNothing(t *testing.T) {
	f := newDashboardFixture()
	f.auth.On("Me", mock.Anything).Return(nil, errors.Backend(401, "Not authenticated")).Once()

	_, err := f.dash.Mount(context.Background())
	require.ErrorIs(t, err, ErrSignInRequired)

	f.friends.AssertNotCalled(t, "List", mock.Anything)
	f.meetups.AssertNotCalled(t, "List", mock.Anything)
}

func TestAddImportedFriendGeocoded(t *testing.T) {
	f := newDashboardFixture()
	lat, lng := 45.4642, 9.19
	f.imported.On("Add", mock.Anything, mock.MatchedBy(func(in models.ImportedFriendInput) bool {
		return in.FirstName == "Mario" && in.LastName == "Rossi" && in.City == "Milano"
	})).Return(&models.ImportedFriend{
		FriendID: "imported_1", FirstName: "Mario", LastName: "Rossi", City: "Milano",
		CityLat: &lat, CityLng: &lng, GeocodeStatus: models.GeocodeSuccess,
	}, nil).Once()
	f.imported.On("Map", mock.Anything).Return([]models.MapMarker{
		{FriendID: "imported_1", Name: "Mario Rossi", City: "Milano", Lat: lat, Lng: lng, MarkerType: models.MarkerImported, GeocodeStatus: models.GeocodeSuccess},
	}, nil).Once()

	friend, err := f.dash.AddImportedFriend(context.Background(), ImportedFriendForm{FirstName: "Mario", LastName: "Rossi", City: "Milano"})
	require.NoError(t, err)
	assert.Equal(t, models.GeocodeSuccess, friend.GeocodeStatus)

	imported := f.dash.Store().ImportedFriends()
	require.Len(t, imported, 1)
	assert.InDelta(t, 45.4642, imported[0].Lat, 1e-6)
	assert.InDelta(t, 9.19, imported[0].Lng, 1e-6)

	successes, _ := f.notify.Snapshot()
	assert.Equal(t, []string{"Mario Rossi added to the map!"}, successes)
}

func TestAddImportedFriendValidatesBeforeRequest(t *testing.T) {
	f := newDashboardFixture()

	_, err := f.dash.AddImportedFriend(context.Background(), ImportedFriendForm{FirstName: "Mario"})
	require.Error(t, err)

	f.imported.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	_, errs := f.notify.Snapshot()
	assert.Len(t, errs, 1)
}

func TestImportCSVReportsCountsVerbatim(t *testing.T) {
	f := newDashboardFixture()
	result := &models.CSVImportResult{
		TotalImported: 2,
		TotalFailed:   1,
		Imported: []models.ImportedFriend{
			{Name: "Mario Rossi", City: "Milano", GeocodeStatus: models.GeocodeSuccess},
			{Name: "Giulia Bianchi", City: "Roma", GeocodeStatus: models.GeocodeFailed},
		},
	}
	f.imported.On("ImportCSV", mock.Anything, "friends.csv", mock.Anything).Return(result, nil).Once()
	f.imported.On("Map", mock.Anything).Return([]models.MapMarker{}, nil).Once()

	res, err := f.dash.ImportCSV(context.Background(), "friends.csv", strings.NewReader("Mario,Rossi,Milano\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalImported)
	assert.Equal(t, 1, res.TotalFailed)
	assert.Equal(t, models.GeocodeFailed, res.Imported[1].GeocodeStatus)
}

func TestImportCSVRejectsOtherFiles(t *testing.T) {
	f := newDashboardFixture()
	_, err := f.dash.ImportCSV(context.Background(), "friends.xlsx", strings.NewReader(""))
	require.Error(t, err)
	f.imported.AssertNotCalled(t, "ImportCSV", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchUsersNeedsTwoCharacters(t *testing.T) {
	f := newDashboardFixture()

	users, err := f.dash.SearchUsers(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, users)
	f.users.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)

	f.users.On("Search", mock.Anything, "an").Return([]models.User{{UserID: "user_a"}}, nil).Once()
	users, err = f.dash.SearchUsers(context.Background(), " an ")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestDeleteGroupResetsSelectedFilter(t *testing.T) {
	f := newDashboardFixture()
	f.dash.SetFilter(models.GroupFilter("group_1"))
	f.groups.On("Delete", mock.Anything, "group_1").Return(nil).Once()
	f.expectRefresh()

	require.NoError(t, f.dash.DeleteGroup(context.Background(), "group_1"))
	assert.Equal(t, models.FilterAll, f.dash.Map().Filter())
}

func TestCreateGroupFailureKeepsState(t *testing.T) {
	f := newDashboardFixture()
	f.groups.On("Create", mock.Anything, models.GroupInput{Name: "Work", Color: models.DefaultGroupColor}).
		Return(nil, errors.Backend(400, "Maximum 20 groups allowed")).Once()

	_, err := f.dash.CreateGroup(context.Background(), "Work", "")
	require.Error(t, err)

	_, errs := f.notify.Snapshot()
	assert.Equal(t, []string{"Maximum 20 groups allowed"}, errs)
	f.groups.AssertNotCalled(t, "List", mock.Anything)
}

func TestSelectListFriendWithoutCityKeepsViewport(t *testing.T) {
	f := newDashboardFixture()
	f.dash.SetView(ViewFriends)

	f.dash.SelectListFriend(models.User{UserID: "user_b", Name: "Bruno"})

	friend, _ := f.dash.Selected()
	require.NotNil(t, friend)
	assert.Equal(t, "user_b", friend.UserID)
	assert.Equal(t, InitialZoom, f.dash.Map().Viewport().Zoom)
	assert.Equal(t, ViewFriends, f.dash.View())
}

func TestSelectMarkerFliesToIt(t *testing.T) {
	f := newDashboardFixture()
	f.dash.SelectMarker(models.MapMarker{FriendID: "imported_1", MarkerType: models.MarkerImported, Lat: 41.9, Lng: 12.5})

	_, imported := f.dash.Selected()
	require.NotNil(t, imported)
	assert.Equal(t, models.LatLng{Lat: 41.9, Lng: 12.5}, f.dash.Map().Viewport().Center)

	f.dash.ClearSelection()
	friend, imported := f.dash.Selected()
	assert.Nil(t, friend)
	assert.Nil(t, imported)
}

func TestLogoutClosesStore(t *testing.T) {
	f := newDashboardFixture()
	f.auth.On("Logout", mock.Anything).Return(nil).Once()

	require.NoError(t, f.dash.Logout(context.Background()))

	// A fetch after logout is discarded.
	f.groups.On("List", mock.Anything).Return([]models.Group{{GroupID: "group_1"}}, nil).Once()
	f.dash.Store().FetchGroups(context.Background())
	assert.Empty(t, f.dash.Store().Groups())
}

func TestMountReportsCancelledLoad(t *testing.T) {
	f := newDashboardFixture()
	f.auth.On("Me", mock.Anything).Return(&models.User{UserID: "user_a"}, nil).Once()
	f.friends.On("List", mock.Anything).Return([]models.User{}, nil).Maybe()
	f.friends.On("MapGrouped", mock.Anything).Return([]models.MapMarker{}, nil).Maybe()
	f.friends.On("Requests", mock.Anything).Return([]models.FriendRequest{}, nil).Maybe()
	f.groups.On("List", mock.Anything).Return([]models.Group{}, nil).Maybe()
	f.meetups.On("List", mock.Anything).Return([]models.Meetup{}, nil).Maybe()
	f.messages.On("Inbox", mock.Anything).Return([]models.InboxMessage{}, nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	user, err := f.dash.Mount(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, user)
	assert.Equal(t, "user_a", user.UserID)
}

func TestTogglerIsSharedPerTarget(t *testing.T) {
	f := newDashboardFixture()
	mario := models.MapMarker{FriendID: "imp_1", MarkerType: models.MarkerImported}
	user := models.MapMarker{UserID: "user_b", MarkerType: models.MarkerActive}

	first := f.dash.Toggler(mario)
	assert.Same(t, first, f.dash.Toggler(models.MapMarker{FriendID: "imp_1", MarkerType: models.MarkerImported}))
	assert.NotSame(t, first, f.dash.Toggler(user))
}

func TestSecondToggleWaitsForFirst(t *testing.T) {
	f := newDashboardFixture()
	mario := models.MapMarker{FriendID: "imp_1", MarkerType: models.MarkerImported}
	group := models.Group{GroupID: "group_1", Name: "Lavoro"}
	started := make(chan struct{})
	release := make(chan struct{})
	f.groups.On("AddMember", mock.Anything, "group_1", "imp_1", models.MemberImported).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(nil).Once()
	f.expectRefresh()

	errs := make(chan error, 1)
	go func() { errs <- f.dash.Toggler(mario).Toggle(context.Background(), group) }()
	<-started

	assert.ErrorIs(t, f.dash.Toggler(mario).Toggle(context.Background(), group), ErrToggleInFlight)
	close(release)
	require.NoError(t, <-errs)
	f.groups.AssertNumberOfCalls(t, "AddMember", 1)
}

func TestStatsFailureNotifies(t *testing.T) {
	f := newDashboardFixture()
	f.users.On("Stats", mock.Anything).Return(nil, errors.Network(context.DeadlineExceeded)).Once()

	_, err := f.dash.Stats(context.Background())
	require.Error(t, err)
	_, errs := f.notify.Snapshot()
	assert.Equal(t, []string{"Failed to load statistics"}, errs)
}

func TestExportNotifiesSuccess(t *testing.T) {
	f := newDashboardFixture()
	f.users.On("Export", mock.Anything).Return(&models.UserExport{Profile: models.User{UserID: "user_a"}}, nil).Once()

	e, err := f.dash.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user_a", e.Profile.UserID)
	successes, _ := f.notify.Snapshot()
	assert.Equal(t, []string{"Export ready"}, successes)
}
