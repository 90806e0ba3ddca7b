package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

type AuthBackendMock struct {
	mock.Mock
}

func (m *AuthBackendMock) Me(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *AuthBackendMock) Session(ctx context.Context, sessionID string) (*models.AuthSession, error) {
	args := m.Called(ctx, sessionID)
	var sess *models.AuthSession
	if val := args.Get(0); val != nil {
		sess = val.(*models.AuthSession)
	}
	return sess, args.Error(1)
}

func (m *AuthBackendMock) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type FriendsBackendMock struct {
	mock.Mock
}

func (m *FriendsBackendMock) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var list []models.User
	if val := args.Get(0); val != nil {
		list = val.([]models.User)
	}
	return list, args.Error(1)
}

func (m *FriendsBackendMock) MapGrouped(ctx context.Context) ([]models.MapMarker, error) {
	args := m.Called(ctx)
	var list []models.MapMarker
	if val := args.Get(0); val != nil {
		list = val.([]models.MapMarker)
	}
	return list, args.Error(1)
}

func (m *FriendsBackendMock) Requests(ctx context.Context) ([]models.FriendRequest, error) {
	args := m.Called(ctx)
	var list []models.FriendRequest
	if val := args.Get(0); val != nil {
		list = val.([]models.FriendRequest)
	}
	return list, args.Error(1)
}

func (m *FriendsBackendMock) SendRequest(ctx context.Context, toUserID string) (*models.FriendRequestSent, error) {
	args := m.Called(ctx, toUserID)
	var sent *models.FriendRequestSent
	if val := args.Get(0); val != nil {
		sent = val.(*models.FriendRequestSent)
	}
	return sent, args.Error(1)
}

func (m *FriendsBackendMock) Accept(ctx context.Context, friendshipID string) error {
	args := m.Called(ctx, friendshipID)
	return args.Error(0)
}

func (m *FriendsBackendMock) Remove(ctx context.Context, friendID string) error {
	args := m.Called(ctx, friendID)
	return args.Error(0)
}

type ImportedFriendsBackendMock struct {
	mock.Mock
}

func (m *ImportedFriendsBackendMock) Map(ctx context.Context) ([]models.MapMarker, error) {
	args := m.Called(ctx)
	var list []models.MapMarker
	if val := args.Get(0); val != nil {
		list = val.([]models.MapMarker)
	}
	return list, args.Error(1)
}

func (m *ImportedFriendsBackendMock) Add(ctx context.Context, in models.ImportedFriendInput) (*models.ImportedFriend, error) {
	args := m.Called(ctx, in)
	var f *models.ImportedFriend
	if val := args.Get(0); val != nil {
		f = val.(*models.ImportedFriend)
	}
	return f, args.Error(1)
}

func (m *ImportedFriendsBackendMock) Update(ctx context.Context, friendID string, in models.ImportedFriendUpdate) (*models.ImportedFriend, error) {
	args := m.Called(ctx, friendID, in)
	var f *models.ImportedFriend
	if val := args.Get(0); val != nil {
		f = val.(*models.ImportedFriend)
	}
	return f, args.Error(1)
}

func (m *ImportedFriendsBackendMock) Delete(ctx context.Context, friendID string) error {
	args := m.Called(ctx, friendID)
	return args.Error(0)
}

func (m *ImportedFriendsBackendMock) Geocode(ctx context.Context, friendID string) (*models.ImportedFriend, error) {
	args := m.Called(ctx, friendID)
	var f *models.ImportedFriend
	if val := args.Get(0); val != nil {
		f = val.(*models.ImportedFriend)
	}
	return f, args.Error(1)
}

func (m *ImportedFriendsBackendMock) ImportCSV(ctx context.Context, filename string, r io.Reader) (*models.CSVImportResult, error) {
	args := m.Called(ctx, filename, r)
	var res *models.CSVImportResult
	if val := args.Get(0); val != nil {
		res = val.(*models.CSVImportResult)
	}
	return res, args.Error(1)
}

type GroupsBackendMock struct {
	mock.Mock
}

func (m *GroupsBackendMock) List(ctx context.Context) ([]models.Group, error) {
	args := m.Called(ctx)
	var list []models.Group
	if val := args.Get(0); val != nil {
		list = val.([]models.Group)
	}
	return list, args.Error(1)
}

func (m *GroupsBackendMock) Create(ctx context.Context, in models.GroupInput) (*models.GroupCreated, error) {
	args := m.Called(ctx, in)
	var created *models.GroupCreated
	if val := args.Get(0); val != nil {
		created = val.(*models.GroupCreated)
	}
	return created, args.Error(1)
}

func (m *GroupsBackendMock) Update(ctx context.Context, groupID string, in models.GroupUpdate) error {
	args := m.Called(ctx, groupID, in)
	return args.Error(0)
}

func (m *GroupsBackendMock) Delete(ctx context.Context, groupID string) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *GroupsBackendMock) AddMember(ctx context.Context, groupID, memberID string, kind models.MemberType) error {
	args := m.Called(ctx, groupID, memberID, kind)
	return args.Error(0)
}

func (m *GroupsBackendMock) RemoveMember(ctx context.Context, groupID, memberID string) error {
	args := m.Called(ctx, groupID, memberID)
	return args.Error(0)
}

type UsersBackendMock struct {
	mock.Mock
}

func (m *UsersBackendMock) Get(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *UsersBackendMock) UpdateMe(ctx context.Context, in models.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, in)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *UsersBackendMock) Search(ctx context.Context, query string) ([]models.User, error) {
	args := m.Called(ctx, query)
	var list []models.User
	if val := args.Get(0); val != nil {
		list = val.([]models.User)
	}
	return list, args.Error(1)
}

func (m *UsersBackendMock) Stats(ctx context.Context) (*models.UserStats, error) {
	args := m.Called(ctx)
	var stats *models.UserStats
	if val := args.Get(0); val != nil {
		stats = val.(*models.UserStats)
	}
	return stats, args.Error(1)
}

func (m *UsersBackendMock) Export(ctx context.Context) (*models.UserExport, error) {
	args := m.Called(ctx)
	var export *models.UserExport
	if val := args.Get(0); val != nil {
		export = val.(*models.UserExport)
	}
	return export, args.Error(1)
}

type MeetupsBackendMock struct {
	mock.Mock
}

func (m *MeetupsBackendMock) List(ctx context.Context) ([]models.Meetup, error) {
	args := m.Called(ctx)
	var list []models.Meetup
	if val := args.Get(0); val != nil {
		list = val.([]models.Meetup)
	}
	return list, args.Error(1)
}

func (m *MeetupsBackendMock) Create(ctx context.Context, in models.MeetupInput) (*models.MeetupCreated, error) {
	args := m.Called(ctx, in)
	var created *models.MeetupCreated
	if val := args.Get(0); val != nil {
		created = val.(*models.MeetupCreated)
	}
	return created, args.Error(1)
}

func (m *MeetupsBackendMock) Join(ctx context.Context, meetupID string) error {
	args := m.Called(ctx, meetupID)
	return args.Error(0)
}

func (m *MeetupsBackendMock) Delete(ctx context.Context, meetupID string) error {
	args := m.Called(ctx, meetupID)
	return args.Error(0)
}

type MessagesBackendMock struct {
	mock.Mock
}

func (m *MessagesBackendMock) Inbox(ctx context.Context) ([]models.InboxMessage, error) {
	args := m.Called(ctx)
	var list []models.InboxMessage
	if val := args.Get(0); val != nil {
		list = val.([]models.InboxMessage)
	}
	return list, args.Error(1)
}

func (m *MessagesBackendMock) Sent(ctx context.Context) ([]models.InboxMessage, error) {
	args := m.Called(ctx)
	var list []models.InboxMessage
	if val := args.Get(0); val != nil {
		list = val.([]models.InboxMessage)
	}
	return list, args.Error(1)
}

func (m *MessagesBackendMock) Send(ctx context.Context, in models.MessageInput) (*models.MessageSent, error) {
	args := m.Called(ctx, in)
	var sent *models.MessageSent
	if val := args.Get(0); val != nil {
		sent = val.(*models.MessageSent)
	}
	return sent, args.Error(1)
}

func (m *MessagesBackendMock) MarkRead(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

type GeocoderMock struct {
	mock.Mock
}

func (m *GeocoderMock) Geocode(ctx context.Context, city string) (*models.GeocodeResult, error) {
	args := m.Called(ctx, city)
	var res *models.GeocodeResult
	if val := args.Get(0); val != nil {
		res = val.(*models.GeocodeResult)
	}
	return res, args.Error(1)
}
