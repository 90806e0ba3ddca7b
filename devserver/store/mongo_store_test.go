package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

func newMockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestMongoGetUser(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("found", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "myf.users", mtest.FirstBatch, bson.D{
			{Key: "user_id", Value: "user_a"},
			{Key: "email", Value: "anna@example.com"},
			{Key: "name", Value: "Anna"},
		}))

		u, err := s.GetUser(context.Background(), "user_a")
		require.NoError(mt, err)
		assert.Equal(mt, "user_a", u.UserID)
		assert.Equal(mt, "Anna", u.Name)
	})

	mt.Run("missing", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "myf.users", mtest.FirstBatch))

		_, err := s.GetUser(context.Background(), "user_x")
		assert.Equal(mt, errors.ErrNotFound, err)
	})
}

func TestMongoUsersByIDsSkipsEmptyQuery(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("empty", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.DB)

		users, err := s.UsersByIDs(context.Background(), nil)
		require.NoError(mt, err)
		assert.Empty(mt, users)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestMongoAcceptFriendship(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("pending", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		require.NoError(mt, s.AcceptFriendship(context.Background(), "fr_1", "user_a", time.Now()))
		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
	})

	mt.Run("not pending", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := s.AcceptFriendship(context.Background(), "fr_1", "user_a", time.Now())
		assert.Equal(mt, errors.ErrNotFound, err)
	})
}

func TestMongoWriteErrorIsDatabaseError(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("duplicate", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := s.InsertFriendship(context.Background(), models.Friendship{FriendshipID: "fr_1"})
		require.Error(mt, err)
		var apiErr *errors.APIError
		require.ErrorAs(mt, err, &apiErr)
		assert.Equal(mt, "DB_ERROR", apiErr.Code)
		assert.Equal(mt, 500, apiErr.Status)
		assert.Equal(mt, "database operation failed", apiErr.Message)
	})
}

func TestMongoFriendIDs(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("both directions", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "myf.friendships", mtest.FirstBatch,
			bson.D{
				{Key: "friendship_id", Value: "fr_1"},
				{Key: "user_id", Value: "user_a"},
				{Key: "friend_id", Value: "user_b"},
				{Key: "status", Value: "accepted"},
			},
			bson.D{
				{Key: "friendship_id", Value: "fr_2"},
				{Key: "user_id", Value: "user_c"},
				{Key: "friend_id", Value: "user_a"},
				{Key: "status", Value: "accepted"},
			},
		))

		ids, err := s.FriendIDs(context.Background(), "user_a")
		require.NoError(mt, err)
		assert.Equal(mt, []string{"user_b", "user_c"}, ids)
	})
}

func TestMongoCountGroups(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("count", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "myf.groups", mtest.FirstBatch,
			bson.D{{Key: "n", Value: 3}},
		))

		n, err := s.CountGroups(context.Background(), "user_a")
		require.NoError(mt, err)
		assert.Equal(mt, 3, n)
	})
}

func TestMongoDeleteImported(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("pulls memberships", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}, bson.E{Key: "nModified", Value: 2}),
		)

		require.NoError(mt, s.DeleteImported(context.Background(), "user_a", "imp_1"))
		assert.Equal(mt, "delete", mt.GetStartedEvent().CommandName)
		assert.Equal(mt, "update", mt.GetStartedEvent().CommandName)
	})

	mt.Run("missing", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := s.DeleteImported(context.Background(), "user_a", "imp_x")
		assert.Equal(mt, errors.ErrNotFound, err)
	})
}

func TestMongoAddGroupMemberUnknownGroup(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("unknown group", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := s.AddGroupMember(context.Background(), "group_x", "imp_1", models.MemberImported)
		assert.Equal(mt, errors.ErrNotFound, err)
	})
}
