package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

func TestWrapErrTagsDisconnectAsUnavailable(t *testing.T) {
	err := wrapErr("insert", mongo.ErrClientDisconnected)
	require.True(t, errors.Is(err, record.ErrStorageUnavailable))
	require.True(t, errors.Is(err, mongo.ErrClientDisconnected))
}

func TestWrapErrTagsDeadlineAsUnavailable(t *testing.T) {
	err := wrapErr("find all", context.DeadlineExceeded)
	require.True(t, errors.Is(err, record.ErrStorageUnavailable))
}

func TestWrapErrTagsServerSelectionAsUnavailable(t *testing.T) {
	sel := topology.ServerSelectionError{Wrapped: errors.New("no reachable servers")}
	err := wrapErr("find by id", fmt.Errorf("select: %w", sel))
	require.True(t, errors.Is(err, record.ErrStorageUnavailable))

	var got topology.ServerSelectionError
	require.True(t, errors.As(err, &got))
}

func TestWrapErrLeavesOtherErrorsAlone(t *testing.T) {
	base := fmt.Errorf("duplicate key")
	err := wrapErr("insert", base)
	require.False(t, errors.Is(err, record.ErrStorageUnavailable))
	require.True(t, errors.Is(err, base))
	require.Contains(t, err.Error(), "insert")
}

func TestMongoRepoRejectsInvalidIDBeforeQuerying(t *testing.T) {
	// a nil collection proves the id check runs before any driver call
	r := NewMongoRepo(nil)
	ctx := context.Background()

	_, err := r.FindByID(ctx, "nope")
	require.True(t, errors.Is(err, record.ErrInvalidID))
	_, err = r.UpdateByID(ctx, "nope", record.Record{"a": 1})
	require.True(t, errors.Is(err, record.ErrInvalidID))
	_, err = r.DeleteByID(ctx, "nope")
	require.True(t, errors.Is(err, record.ErrInvalidID))
}

func TestMongoRepoAgainstMockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("insert assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		res, err := NewMongoRepo(mt.Coll).Insert(ctx, record.Record{"title": "t", record.IDField: "client"})
		require.NoError(mt, err)
		require.True(mt, res.Acknowledged)
		require.False(mt, res.InsertedID.IsZero())
		require.Equal(mt, res.InsertedID, res.Record.ID())

		sent := mt.GetStartedEvent().Command
		require.Equal(mt, res.InsertedID, sent.Lookup("documents", "0", "_id").ObjectID())
	})

	mt.Run("find all decodes every document", func(mt *mtest.T) {
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{{Key: "_id", Value: a}, {Key: "headline", Value: "one"}}),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch, bson.D{{Key: "_id", Value: b}, {Key: "headline", Value: "two"}}),
		)
		list, err := NewMongoRepo(mt.Coll).FindAll(ctx)
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		require.Equal(mt, a, list[0].ID())
		require.Equal(mt, "one", list[0]["headline"])
		require.Equal(mt, b, list[1].ID())
		require.Equal(mt, "two", list[1]["headline"])
	})

	mt.Run("find all on empty collection", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		list, err := NewMongoRepo(mt.Coll).FindAll(ctx)
		require.NoError(mt, err)
		require.NotNil(mt, list)
		require.Empty(mt, list)
	})

	mt.Run("find by id absent is nil", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		got, err := NewMongoRepo(mt.Coll).FindByID(ctx, primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		require.Nil(mt, got)
	})

	mt.Run("update of unknown id reports created", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: oid}}}},
		))
		res, err := NewMongoRepo(mt.Coll).UpdateByID(ctx, oid.Hex(), record.Record{"publiCategory": "X"})
		require.NoError(mt, err)
		require.Equal(mt, Created, res.Outcome)
		require.EqualValues(mt, 1, res.UpsertedCount)
		require.EqualValues(mt, 0, res.MatchedCount)
		require.Equal(mt, oid, *res.UpsertedID)

		sent := mt.GetStartedEvent().Command
		require.True(mt, sent.Lookup("updates", "0", "upsert").Boolean())
		require.Equal(mt, "X", sent.Lookup("updates", "0", "u", "$set", "publiCategory").StringValue())
	})

	mt.Run("update of existing id reports updated", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))
		res, err := NewMongoRepo(mt.Coll).UpdateByID(ctx, primitive.NewObjectID().Hex(), record.Record{"a": 1})
		require.NoError(mt, err)
		require.Equal(mt, Updated, res.Outcome)
		require.EqualValues(mt, 1, res.MatchedCount)
		require.EqualValues(mt, 1, res.ModifiedCount)
		require.Nil(mt, res.UpsertedID)
	})

	mt.Run("empty update falls back to setOnInsert", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: oid}}}},
		))
		res, err := NewMongoRepo(mt.Coll).UpdateByID(ctx, oid.Hex(), record.Record{record.IDField: "ignored"})
		require.NoError(mt, err)
		require.Equal(mt, Created, res.Outcome)

		u := mt.GetStartedEvent().Command.Lookup("updates", "0", "u").Document()
		_, err = u.LookupErr("$set")
		require.Error(mt, err, "an empty $set is rejected by the server")
		require.Equal(mt, oid, u.Lookup("$setOnInsert", "_id").ObjectID())
	})

	mt.Run("delete reports count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		res, err := NewMongoRepo(mt.Coll).DeleteByID(ctx, primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		require.EqualValues(mt, 1, res.DeletedCount)
	})

	mt.Run("command error is not tagged unavailable", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad value", Name: "BadValue"}))
		_, err := NewMongoRepo(mt.Coll).DeleteByID(ctx, primitive.NewObjectID().Hex())
		require.Error(mt, err)
		require.False(mt, errors.Is(err, record.ErrStorageUnavailable))
	})
}
