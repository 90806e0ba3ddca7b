package store

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

// MongoStore persists to MongoDB using the collection layout of the production backend.
type MongoStore struct {
	client      *mongo.Client
	users       *mongo.Collection
	sessions    *mongo.Collection
	friendships *mongo.Collection
	imported    *mongo.Collection
	groups      *mongo.Collection
	meetups     *mongo.Collection
	messages    *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects, pings and ensures indexes.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.Println("Connected to MongoDB")

	s := newMongoStore(client, client.Database(dbName))
	s.ensureIndexes(ctx)
	return s, nil
}

func newMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{
		client:      client,
		users:       db.Collection("users"),
		sessions:    db.Collection("user_sessions"),
		friendships: db.Collection("friendships"),
		imported:    db.Collection("imported_friends"),
		groups:      db.Collection("groups"),
		meetups:     db.Collection("meetups"),
		messages:    db.Collection("messages"),
	}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) {
	unique := []struct {
		coll *mongo.Collection
		key  string
	}{
		{s.users, "user_id"},
		{s.users, "email"},
		{s.sessions, "session_token"},
		{s.friendships, "friendship_id"},
		{s.imported, "friend_id"},
		{s.groups, "group_id"},
		{s.meetups, "meetup_id"},
		{s.messages, "message_id"},
	}
	for _, idx := range unique {
		_, err := idx.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: idx.key, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			log.Printf("Failed to create unique index on %s.%s: %v", idx.coll.Name(), idx.key, err)
		}
	}
}

func dbErr(err error) error {
	if err == mongo.ErrNoDocuments {
		return errors.ErrNotFound
	}
	return errors.Wrap(err, "DB_ERROR", "database operation failed", http.StatusInternalServerError)
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, dbErr(err)
	}
	defer cursor.Close(ctx)
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, dbErr(err)
	}
	return out, nil
}

func (s *MongoStore) UpsertUserByEmail(ctx context.Context, email, name, picture string) (models.User, error) {
	res, err := s.users.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"name": name, "picture": picture}})
	if err != nil {
		return models.User{}, dbErr(err)
	}
	if res.MatchedCount == 0 {
		u := newUser(email, name, picture)
		if _, err := s.users.InsertOne(ctx, u); err != nil {
			return models.User{}, dbErr(err)
		}
		return u, nil
	}
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return models.User{}, dbErr(err)
	}
	return u, nil
}

func (s *MongoStore) GetUser(ctx context.Context, userID string) (models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"user_id": userID}).Decode(&u); err != nil {
		return models.User{}, dbErr(err)
	}
	return u, nil
}

func (s *MongoStore) UsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return findAll[models.User](ctx, s.users, bson.M{"user_id": bson.M{"$in": ids}})
}

func (s *MongoStore) UpdateUser(ctx context.Context, userID string, up models.ProfileUpdate) (models.User, error) {
	set := bson.M{}
	if up.Bio != nil {
		set["bio"] = *up.Bio
	}
	if up.ActiveCity != nil {
		set["active_city"] = *up.ActiveCity
	}
	if up.ActiveCityLat != nil {
		set["active_city_lat"] = *up.ActiveCityLat
	}
	if up.ActiveCityLng != nil {
		set["active_city_lng"] = *up.ActiveCityLng
	}
	if up.CompetentCities != nil {
		set["competent_cities"] = up.CompetentCities
	}
	if up.Availability != nil {
		set["availability"] = up.Availability
	}
	if len(set) > 0 {
		if _, err := s.users.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{"$set": set}); err != nil {
			return models.User{}, dbErr(err)
		}
	}
	return s.GetUser(ctx, userID)
}

func (s *MongoStore) SearchUsers(ctx context.Context, excludeID, query string, limit int) ([]models.User, error) {
	pattern := bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
	filter := bson.M{"$and": bson.A{
		bson.M{"user_id": bson.M{"$ne": excludeID}},
		bson.M{"$or": bson.A{bson.M{"name": pattern}, bson.M{"email": pattern}}},
	}}
	return findAll[models.User](ctx, s.users, filter, options.Find().SetLimit(int64(limit)))
}

func (s *MongoStore) ReplaceSession(ctx context.Context, sess models.Session) error {
	if _, err := s.sessions.DeleteMany(ctx, bson.M{"user_id": sess.UserID}); err != nil {
		return dbErr(err)
	}
	if _, err := s.sessions.InsertOne(ctx, sess); err != nil {
		return dbErr(err)
	}
	return nil
}

func (s *MongoStore) GetSession(ctx context.Context, token string) (models.Session, error) {
	var sess models.Session
	if err := s.sessions.FindOne(ctx, bson.M{"session_token": token}).Decode(&sess); err != nil {
		return models.Session{}, dbErr(err)
	}
	return sess, nil
}

func (s *MongoStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.sessions.DeleteOne(ctx, bson.M{"session_token": token})
	if err != nil {
		return dbErr(err)
	}
	return nil
}

func between(a, b string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"user_id": a, "friend_id": b},
		bson.M{"user_id": b, "friend_id": a},
	}}
}

func (s *MongoStore) FindFriendship(ctx context.Context, a, b string) (models.Friendship, error) {
	var f models.Friendship
	if err := s.friendships.FindOne(ctx, between(a, b)).Decode(&f); err != nil {
		return models.Friendship{}, dbErr(err)
	}
	return f, nil
}

func (s *MongoStore) InsertFriendship(ctx context.Context, f models.Friendship) error {
	if _, err := s.friendships.InsertOne(ctx, f); err != nil {
		return dbErr(err)
	}
	return nil
}

func (s *MongoStore) AcceptFriendship(ctx context.Context, friendshipID, recipientID string, at time.Time) error {
	res, err := s.friendships.UpdateOne(ctx,
		bson.M{"friendship_id": friendshipID, "friend_id": recipientID, "status": models.FriendshipPending},
		bson.M{"$set": bson.M{"status": models.FriendshipAccepted, "accepted_at": at}},
	)
	if err != nil {
		return dbErr(err)
	}
	if res.ModifiedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteFriendship(ctx context.Context, a, b string) error {
	if _, err := s.friendships.DeleteOne(ctx, between(a, b)); err != nil {
		return dbErr(err)
	}
	return nil
}

func (s *MongoStore) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	filter := bson.M{
		"$or":    bson.A{bson.M{"user_id": userID}, bson.M{"friend_id": userID}},
		"status": models.FriendshipAccepted,
	}
	edges, err := findAll[models.Friendship](ctx, s.friendships, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(edges))
	for _, f := range edges {
		ids = append(ids, f.Other(userID))
	}
	return ids, nil
}

func (s *MongoStore) PendingTo(ctx context.Context, userID string) ([]models.Friendship, error) {
	return findAll[models.Friendship](ctx, s.friendships,
		bson.M{"friend_id": userID, "status": models.FriendshipPending},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(100))
}

func (s *MongoStore) ListImported(ctx context.Context, ownerID string) ([]models.ImportedFriend, error) {
	return findAll[models.ImportedFriend](ctx, s.imported, bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (s *MongoStore) GetImported(ctx context.Context, ownerID, friendID string) (models.ImportedFriend, error) {
	var f models.ImportedFriend
	if err := s.imported.FindOne(ctx, bson.M{"friend_id": friendID, "owner_id": ownerID}).Decode(&f); err != nil {
		return models.ImportedFriend{}, dbErr(err)
	}
	return f, nil
}

func (s *MongoStore) InsertImported(ctx context.Context, friends ...models.ImportedFriend) error {
	if len(friends) == 0 {
		return nil
	}
	docs := make([]any, 0, len(friends))
	for _, f := range friends {
		docs = append(docs, f)
	}
	if _, err := s.imported.InsertMany(ctx, docs); err != nil {
		return dbErr(err)
	}
	return nil
}

func (s *MongoStore) UpdateImported(ctx context.Context, f models.ImportedFriend) error {
	res, err := s.imported.ReplaceOne(ctx, bson.M{"friend_id": f.FriendID, "owner_id": f.OwnerID}, f)
	if err != nil {
		return dbErr(err)
	}
	if res.MatchedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteImported(ctx context.Context, ownerID, friendID string) error {
	res, err := s.imported.DeleteOne(ctx, bson.M{"friend_id": friendID, "owner_id": ownerID})
	if err != nil {
		return dbErr(err)
	}
	if res.DeletedCount == 0 {
		return errors.ErrNotFound
	}
	_, err = s.groups.UpdateMany(ctx, bson.M{"owner_id": ownerID}, bson.M{"$pull": bson.M{"imported_member_ids": friendID}})
	if err != nil {
		return dbErr(err)
	}
	return nil
}

func (s *MongoStore) ListGroups(ctx context.Context, ownerID string) ([]models.Group, error) {
	return findAll[models.Group](ctx, s.groups, bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(100))
}

func (s *MongoStore) GetGroup(ctx context.Context, ownerID, groupID string) (models.Group, error) {
	var g models.Group
	if err := s.groups.FindOne(ctx, bson.M{"group_id": groupID, "owner_id": ownerID}).Decode(&g); err != nil {
		return models.Group{}, dbErr(err)
	}
	return g, nil
}

func (s *MongoStore) CountGroups(ctx context.Context, ownerID string) (int, error) {
	n, err := s.groups.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, dbErr(err)
	}
	return int(n), nil
}

func (s *MongoStore) InsertGroup(ctx context.Context, g models.Group) error {
	if _, err := s.groups.InsertOne(ctx, g); err != nil {
		return dbErr(err)
	}
	return nil
}

func (s *MongoStore) UpdateGroup(ctx context.Context, ownerID, groupID string, up models.GroupUpdate) (models.Group, error) {
	set := bson.M{}
	if up.Name != nil {
		set["name"] = *up.Name
	}
	if up.Color != nil {
		set["color"] = *up.Color
	}
	if up.Icon != nil {
		set["icon"] = *up.Icon
	}
	if len(set) > 0 {
		res, err := s.groups.UpdateOne(ctx, bson.M{"group_id": groupID, "owner_id": ownerID}, bson.M{"$set": set})
		if err != nil {
			return models.Group{}, dbErr(err)
		}
		if res.MatchedCount == 0 {
			return models.Group{}, errors.ErrNotFound
		}
	}
	return s.GetGroup(ctx, ownerID, groupID)
}

func (s *MongoStore) DeleteGroup(ctx context.Context, ownerID, groupID string) error {
	res, err := s.groups.DeleteOne(ctx, bson.M{"group_id": groupID, "owner_id": ownerID})
	if err != nil {
		return dbErr(err)
	}
	if res.DeletedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (s *MongoStore) AddGroupMember(ctx context.Context, groupID, memberID string, kind models.MemberType) error {
	field := "member_ids"
	if kind == models.MemberImported {
		field = "imported_member_ids"
	}
	res, err := s.groups.UpdateOne(ctx, bson.M{"group_id": groupID}, bson.M{"$addToSet": bson.M{field: memberID}})
	if err != nil {
		return dbErr(err)
	}
	if res.MatchedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (s *MongoStore) RemoveGroupMember(ctx context.Context, ownerID, groupID, memberID string) error {
	res, err := s.groups.UpdateOne(ctx,
		bson.M{"group_id": groupID, "owner_id": ownerID},
		bson.M{"$pull": bson.M{"member_ids": memberID, "imported_member_ids": memberID}},
	)
	if err != nil {
		return dbErr(err)
	}
	if res.MatchedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (s *MongoStore) InsertMeetup(ctx context.Context, m models.Meetup) error {
	if _, err := s.meetups.InsertOne(ctx, m); err != nil {
		return dbErr(err)
	}
	return nil
}

func (s *MongoStore) MeetupsFor(ctx context.Context, userID string) ([]models.Meetup, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"creator_id": userID},
		bson.M{"invited_user_ids": userID},
		bson.M{"attendee_ids": userID},
	}}
	return findAll[models.Meetup](ctx, s.meetups, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(100))
}

func (s *MongoStore) JoinMeetup(ctx context.Context, meetupID, userID string) error {
	res, err := s.meetups.UpdateOne(ctx, bson.M{"meetup_id": meetupID}, bson.M{"$addToSet": bson.M{"attendee_ids": userID}})
	if err != nil {
		return dbErr(err)
	}
	if res.MatchedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteMeetup(ctx context.Context, meetupID, creatorID string) error {
	res, err := s.meetups.DeleteOne(ctx, bson.M{"meetup_id": meetupID, "creator_id": creatorID})
	if err != nil {
		return dbErr(err)
	}
	if res.DeletedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (s *MongoStore) InsertMessage(ctx context.Context, m models.InboxMessage) error {
	if _, err := s.messages.InsertOne(ctx, m); err != nil {
		return dbErr(err)
	}
	return nil
}

func (s *MongoStore) Inbox(ctx context.Context, userID string) ([]models.InboxMessage, error) {
	return findAll[models.InboxMessage](ctx, s.messages, bson.M{"to_user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(100))
}

func (s *MongoStore) Sent(ctx context.Context, userID string) ([]models.InboxMessage, error) {
	return findAll[models.InboxMessage](ctx, s.messages, bson.M{"from_user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(100))
}

func (s *MongoStore) MarkRead(ctx context.Context, messageID, userID string) error {
	_, err := s.messages.UpdateOne(ctx,
		bson.M{"message_id": messageID, "to_user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return dbErr(err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
