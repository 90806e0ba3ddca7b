package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

// MemoryStore keeps everything in process memory. It is the default when no MongoDB is configured.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]models.User
	sessions    map[string]models.Session
	friendships map[string]models.Friendship
	imported    map[string]models.ImportedFriend
	groups      map[string]models.Group
	meetups     map[string]models.Meetup
	messages    map[string]models.InboxMessage
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       map[string]models.User{},
		sessions:    map[string]models.Session{},
		friendships: map[string]models.Friendship{},
		imported:    map[string]models.ImportedFriend{},
		groups:      map[string]models.Group{},
		meetups:     map[string]models.Meetup{},
		messages:    map[string]models.InboxMessage{},
	}
}

func (s *MemoryStore) UpsertUserByEmail(_ context.Context, email, name, picture string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Email == email {
			u.Name, u.Picture = name, picture
			s.users[id] = u
			return u, nil
		}
	}
	u := newUser(email, name, picture)
	s.users[u.UserID] = u
	return u, nil
}

func (s *MemoryStore) GetUser(_ context.Context, userID string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return models.User{}, errors.ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) UsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, userID string, up models.ProfileUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.User{}, errors.ErrNotFound
	}
	applyProfile(&u, up)
	s.users[userID] = u
	return u, nil
}

func (s *MemoryStore) SearchUsers(_ context.Context, excludeID, query string, limit int) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.User{}
	for _, u := range s.users {
		if u.UserID != excludeID && matchesQuery(u, query) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) ReplaceSession(_ context.Context, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, existing := range s.sessions {
		if existing.UserID == sess.UserID {
			delete(s.sessions, token)
		}
	}
	s.sessions[sess.SessionToken] = sess
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, token string) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return models.Session{}, errors.ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *MemoryStore) FindFriendship(_ context.Context, a, b string) (models.Friendship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.friendships {
		if (f.UserID == a && f.FriendID == b) || (f.UserID == b && f.FriendID == a) {
			return f, nil
		}
	}
	return models.Friendship{}, errors.ErrNotFound
}

func (s *MemoryStore) InsertFriendship(_ context.Context, f models.Friendship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friendships[f.FriendshipID] = f
	return nil
}

func (s *MemoryStore) AcceptFriendship(_ context.Context, friendshipID, recipientID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.friendships[friendshipID]
	if !ok || f.FriendID != recipientID || f.Status != models.FriendshipPending {
		return errors.ErrNotFound
	}
	f.Status = models.FriendshipAccepted
	f.AcceptedAt = &at
	s.friendships[friendshipID] = f
	return nil
}

func (s *MemoryStore) DeleteFriendship(_ context.Context, a, b string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, f := range s.friendships {
		if (f.UserID == a && f.FriendID == b) || (f.UserID == b && f.FriendID == a) {
			delete(s.friendships, id)
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) FriendIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []string{}
	for _, f := range s.sortedFriendships() {
		if f.Status != models.FriendshipAccepted {
			continue
		}
		if f.UserID == userID || f.FriendID == userID {
			ids = append(ids, f.Other(userID))
		}
	}
	return ids, nil
}

func (s *MemoryStore) PendingTo(_ context.Context, userID string) ([]models.Friendship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Friendship{}
	for _, f := range s.sortedFriendships() {
		if f.FriendID == userID && f.Status == models.FriendshipPending {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *MemoryStore) sortedFriendships() []models.Friendship {
	out := make([]models.Friendship, 0, len(s.friendships))
	for _, f := range s.friendships {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].FriendshipID < out[j].FriendshipID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryStore) ListImported(_ context.Context, ownerID string) ([]models.ImportedFriend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.ImportedFriend{}
	for _, f := range s.imported {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].FriendID < out[j].FriendID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) GetImported(_ context.Context, ownerID, friendID string) (models.ImportedFriend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.imported[friendID]
	if !ok || f.OwnerID != ownerID {
		return models.ImportedFriend{}, errors.ErrNotFound
	}
	return f, nil
}

func (s *MemoryStore) InsertImported(_ context.Context, friends ...models.ImportedFriend) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range friends {
		s.imported[f.FriendID] = f
	}
	return nil
}

func (s *MemoryStore) UpdateImported(_ context.Context, f models.ImportedFriend) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.imported[f.FriendID]
	if !ok || existing.OwnerID != f.OwnerID {
		return errors.ErrNotFound
	}
	s.imported[f.FriendID] = f
	return nil
}

func (s *MemoryStore) DeleteImported(_ context.Context, ownerID, friendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.imported[friendID]
	if !ok || f.OwnerID != ownerID {
		return errors.ErrNotFound
	}
	delete(s.imported, friendID)
	for id, g := range s.groups {
		g.ImportedMemberIDs = without(g.ImportedMemberIDs, friendID)
		s.groups[id] = g
	}
	return nil
}

func (s *MemoryStore) ListGroups(_ context.Context, ownerID string) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Group{}
	for _, g := range s.groups {
		if g.OwnerID == ownerID {
			out = append(out, cloneGroup(g))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].GroupID < out[j].GroupID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) GetGroup(_ context.Context, ownerID, groupID string) (models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok || g.OwnerID != ownerID {
		return models.Group{}, errors.ErrNotFound
	}
	return cloneGroup(g), nil
}

func (s *MemoryStore) CountGroups(_ context.Context, ownerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, g := range s.groups {
		if g.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) InsertGroup(_ context.Context, g models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.GroupID] = cloneGroup(g)
	return nil
}

func (s *MemoryStore) UpdateGroup(_ context.Context, ownerID, groupID string, up models.GroupUpdate) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok || g.OwnerID != ownerID {
		return models.Group{}, errors.ErrNotFound
	}
	if up.Name != nil {
		g.Name = *up.Name
	}
	if up.Color != nil {
		g.Color = *up.Color
	}
	if up.Icon != nil {
		g.Icon = up.Icon
	}
	s.groups[groupID] = g
	return cloneGroup(g), nil
}

func (s *MemoryStore) DeleteGroup(_ context.Context, ownerID, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok || g.OwnerID != ownerID {
		return errors.ErrNotFound
	}
	delete(s.groups, groupID)
	return nil
}

func (s *MemoryStore) AddGroupMember(_ context.Context, groupID, memberID string, kind models.MemberType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return errors.ErrNotFound
	}
	if g.HasMember(memberID, kind) {
		return nil
	}
	if kind == models.MemberImported {
		g.ImportedMemberIDs = append(g.ImportedMemberIDs, memberID)
	} else {
		g.MemberIDs = append(g.MemberIDs, memberID)
	}
	s.groups[groupID] = g
	return nil
}

func (s *MemoryStore) RemoveGroupMember(_ context.Context, ownerID, groupID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok || g.OwnerID != ownerID {
		return errors.ErrNotFound
	}
	g.MemberIDs = without(g.MemberIDs, memberID)
	g.ImportedMemberIDs = without(g.ImportedMemberIDs, memberID)
	s.groups[groupID] = g
	return nil
}

func (s *MemoryStore) InsertMeetup(_ context.Context, m models.Meetup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetups[m.MeetupID] = m
	return nil
}

func (s *MemoryStore) MeetupsFor(_ context.Context, userID string) ([]models.Meetup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Meetup{}
	for _, m := range s.meetups {
		if m.CreatorID == userID || contains(m.InvitedUserIDs, userID) || contains(m.AttendeeIDs, userID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) JoinMeetup(_ context.Context, meetupID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetups[meetupID]
	if !ok {
		return errors.ErrNotFound
	}
	if !contains(m.AttendeeIDs, userID) {
		m.AttendeeIDs = append(m.AttendeeIDs, userID)
		s.meetups[meetupID] = m
	}
	return nil
}

func (s *MemoryStore) DeleteMeetup(_ context.Context, meetupID, creatorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetups[meetupID]
	if !ok || m.CreatorID != creatorID {
		return errors.ErrNotFound
	}
	delete(s.meetups, meetupID)
	return nil
}

func (s *MemoryStore) InsertMessage(_ context.Context, m models.InboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.FromUser = nil
	s.messages[m.MessageID] = m
	return nil
}

func (s *MemoryStore) Inbox(_ context.Context, userID string) ([]models.InboxMessage, error) {
	return s.messagesWhere(func(m models.InboxMessage) bool { return m.ToUserID == userID }), nil
}

func (s *MemoryStore) Sent(_ context.Context, userID string) ([]models.InboxMessage, error) {
	return s.messagesWhere(func(m models.InboxMessage) bool { return m.FromUserID == userID }), nil
}

func (s *MemoryStore) messagesWhere(keep func(models.InboxMessage) bool) []models.InboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.InboxMessage{}
	for _, m := range s.messages {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > 100 {
		out = out[:100]
	}
	return out
}

func (s *MemoryStore) MarkRead(_ context.Context, messageID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if ok && m.ToUserID == userID {
		m.Read = true
		s.messages[messageID] = m
	}
	return nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

func cloneGroup(g models.Group) models.Group {
	g.MemberIDs = append([]string{}, g.MemberIDs...)
	g.ImportedMemberIDs = append([]string{}, g.ImportedMemberIDs...)
	return g
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
