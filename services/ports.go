package services

import (
	"context"
	"io"

	"github.com/thebestitaly/mapyourfriends-emergent/api"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// The services consume the backend through these narrow interfaces. The api sub-clients satisfy them.

type AuthBackend interface {
	Me(ctx context.Context) (*models.User, error)
	Session(ctx context.Context, sessionID string) (*models.AuthSession, error)
	Logout(ctx context.Context) error
}

type FriendsBackend interface {
	List(ctx context.Context) ([]models.User, error)
	MapGrouped(ctx context.Context) ([]models.MapMarker, error)
	Requests(ctx context.Context) ([]models.FriendRequest, error)
	SendRequest(ctx context.Context, toUserID string) (*models.FriendRequestSent, error)
	Accept(ctx context.Context, friendshipID string) error
	Remove(ctx context.Context, friendID string) error
}

type ImportedFriendsBackend interface {
	Map(ctx context.Context) ([]models.MapMarker, error)
	Add(ctx context.Context, in models.ImportedFriendInput) (*models.ImportedFriend, error)
	Update(ctx context.Context, friendID string, in models.ImportedFriendUpdate) (*models.ImportedFriend, error)
	Delete(ctx context.Context, friendID string) error
	Geocode(ctx context.Context, friendID string) (*models.ImportedFriend, error)
	ImportCSV(ctx context.Context, filename string, r io.Reader) (*models.CSVImportResult, error)
}

type GroupsBackend interface {
	List(ctx context.Context) ([]models.Group, error)
	Create(ctx context.Context, in models.GroupInput) (*models.GroupCreated, error)
	Update(ctx context.Context, groupID string, in models.GroupUpdate) error
	Delete(ctx context.Context, groupID string) error
	AddMember(ctx context.Context, groupID, memberID string, kind models.MemberType) error
	RemoveMember(ctx context.Context, groupID, memberID string) error
}

type UsersBackend interface {
	Get(ctx context.Context, userID string) (*models.User, error)
	UpdateMe(ctx context.Context, in models.ProfileUpdate) (*models.User, error)
	Search(ctx context.Context, query string) ([]models.User, error)
	Stats(ctx context.Context) (*models.UserStats, error)
	Export(ctx context.Context) (*models.UserExport, error)
}

type MeetupsBackend interface {
	List(ctx context.Context) ([]models.Meetup, error)
	Create(ctx context.Context, in models.MeetupInput) (*models.MeetupCreated, error)
	Join(ctx context.Context, meetupID string) error
	Delete(ctx context.Context, meetupID string) error
}

type MessagesBackend interface {
	Inbox(ctx context.Context) ([]models.InboxMessage, error)
	Sent(ctx context.Context) ([]models.InboxMessage, error)
	Send(ctx context.Context, in models.MessageInput) (*models.MessageSent, error)
	MarkRead(ctx context.Context, messageID string) error
}

type Geocoder interface {
	Geocode(ctx context.Context, city string) (*models.GeocodeResult, error)
}

var (
	_ AuthBackend            = (*api.AuthAPI)(nil)
	_ FriendsBackend         = (*api.FriendsAPI)(nil)
	_ ImportedFriendsBackend = (*api.ImportedFriendsAPI)(nil)
	_ GroupsBackend          = (*api.GroupsAPI)(nil)
	_ UsersBackend           = (*api.UsersAPI)(nil)
	_ MeetupsBackend         = (*api.MeetupsAPI)(nil)
	_ MessagesBackend        = (*api.MessagesAPI)(nil)
	_ Geocoder               = (*api.GeocodingAPI)(nil)
)

// Backend bundles every port. FromClient builds one from an api.Client.
type Backend struct {
	Auth            AuthBackend
	Friends         FriendsBackend
	ImportedFriends ImportedFriendsBackend
	Groups          GroupsBackend
	Users           UsersBackend
	Meetups         MeetupsBackend
	Messages        MessagesBackend
	Geocoding       Geocoder
}

func FromClient(c *api.Client) Backend {
	return Backend{
		Auth:            c.Auth,
		Friends:         c.Friends,
		ImportedFriends: c.ImportedFriends,
		Groups:          c.Groups,
		Users:           c.Users,
		Meetups:         c.Meetups,
		Messages:        c.Messages,
		Geocoding:       c.Geocoding,
	}
}
