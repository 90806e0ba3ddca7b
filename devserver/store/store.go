package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// Store persists everything the devserver serves. Lookups that find nothing return errors.ErrNotFound.
type Store interface {
	UpsertUserByEmail(ctx context.Context, email, name, picture string) (models.User, error)
	GetUser(ctx context.Context, userID string) (models.User, error)
	UsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	UpdateUser(ctx context.Context, userID string, up models.ProfileUpdate) (models.User, error)
	SearchUsers(ctx context.Context, excludeID, query string, limit int) ([]models.User, error)

	ReplaceSession(ctx context.Context, s models.Session) error
	GetSession(ctx context.Context, token string) (models.Session, error)
	DeleteSession(ctx context.Context, token string) error

	FindFriendship(ctx context.Context, a, b string) (models.Friendship, error)
	InsertFriendship(ctx context.Context, f models.Friendship) error
	AcceptFriendship(ctx context.Context, friendshipID, recipientID string, at time.Time) error
	DeleteFriendship(ctx context.Context, a, b string) error
	FriendIDs(ctx context.Context, userID string) ([]string, error)
	PendingTo(ctx context.Context, userID string) ([]models.Friendship, error)

	ListImported(ctx context.Context, ownerID string) ([]models.ImportedFriend, error)
	GetImported(ctx context.Context, ownerID, friendID string) (models.ImportedFriend, error)
	InsertImported(ctx context.Context, friends ...models.ImportedFriend) error
	UpdateImported(ctx context.Context, f models.ImportedFriend) error
	DeleteImported(ctx context.Context, ownerID, friendID string) error

	ListGroups(ctx context.Context, ownerID string) ([]models.Group, error)
	GetGroup(ctx context.Context, ownerID, groupID string) (models.Group, error)
	CountGroups(ctx context.Context, ownerID string) (int, error)
	InsertGroup(ctx context.Context, g models.Group) error
	UpdateGroup(ctx context.Context, ownerID, groupID string, up models.GroupUpdate) (models.Group, error)
	DeleteGroup(ctx context.Context, ownerID, groupID string) error
	AddGroupMember(ctx context.Context, groupID, memberID string, kind models.MemberType) error
	RemoveGroupMember(ctx context.Context, ownerID, groupID, memberID string) error

	InsertMeetup(ctx context.Context, m models.Meetup) error
	MeetupsFor(ctx context.Context, userID string) ([]models.Meetup, error)
	JoinMeetup(ctx context.Context, meetupID, userID string) error
	DeleteMeetup(ctx context.Context, meetupID, creatorID string) error

	InsertMessage(ctx context.Context, m models.InboxMessage) error
	Inbox(ctx context.Context, userID string) ([]models.InboxMessage, error)
	Sent(ctx context.Context, userID string) ([]models.InboxMessage, error)
	MarkRead(ctx context.Context, messageID, userID string) error

	Close(ctx context.Context) error
}

// NewID builds an id of the form prefix_<12 hex>.
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func newUser(email, name, picture string) models.User {
	return models.User{
		UserID:          NewID("user"),
		Email:           email,
		Name:            name,
		Picture:         picture,
		CompetentCities: []models.CompetentCity{},
		Availability:    []string{},
		CreatedAt:       time.Now().UTC(),
	}
}

func applyProfile(u *models.User, up models.ProfileUpdate) {
	if up.Bio != nil {
		u.Bio = *up.Bio
	}
	if up.ActiveCity != nil {
		u.ActiveCity = *up.ActiveCity
	}
	if up.ActiveCityLat != nil {
		u.ActiveCityLat = up.ActiveCityLat
	}
	if up.ActiveCityLng != nil {
		u.ActiveCityLng = up.ActiveCityLng
	}
	if up.CompetentCities != nil {
		u.CompetentCities = up.CompetentCities
	}
	if up.Availability != nil {
		u.Availability = up.Availability
	}
}

func matchesQuery(u models.User, q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q)
}
