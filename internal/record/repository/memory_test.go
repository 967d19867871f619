package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryRepoCRUD(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()

	ins, err := r.Insert(ctx, record.Record{"proName": "VR", "proDesc": "hello"})
	require.NoError(t, err)
	require.True(t, ins.Acknowledged)
	require.False(t, ins.InsertedID.IsZero())
	require.Equal(t, ins.InsertedID, ins.Record.ID())

	got, err := r.FindByID(ctx, ins.InsertedID.Hex())
	require.NoError(t, err)
	require.Equal(t, "hello", got["proDesc"])

	list, err := r.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	upd, err := r.UpdateByID(ctx, ins.InsertedID.Hex(), record.Record{"proDesc": "new"})
	require.NoError(t, err)
	require.Equal(t, Updated, upd.Outcome)
	require.EqualValues(t, 1, upd.MatchedCount)
	require.EqualValues(t, 1, upd.ModifiedCount)
	require.Nil(t, upd.UpsertedID)

	got2, err := r.FindByID(ctx, ins.InsertedID.Hex())
	require.NoError(t, err)
	require.Equal(t, "new", got2["proDesc"])
	require.Equal(t, "VR", got2["proName"])

	del, err := r.DeleteByID(ctx, ins.InsertedID.Hex())
	require.NoError(t, err)
	require.EqualValues(t, 1, del.DeletedCount)

	gone, err := r.FindByID(ctx, ins.InsertedID.Hex())
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestMemoryRepoInsertIgnoresClientID(t *testing.T) {
	r := NewMemoryRepo()
	supplied := primitive.NewObjectID()
	ins, err := r.Insert(context.Background(), record.Record{record.IDField: supplied, "title": "x"})
	require.NoError(t, err)
	require.NotEqual(t, supplied, ins.InsertedID)
}

func TestMemoryRepoUpdateUpsertsMissingRecord(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	id := primitive.NewObjectID().Hex()

	res, err := r.UpdateByID(ctx, id, record.Record{"publicationsDesc": "v2"})
	require.NoError(t, err)
	require.Equal(t, Created, res.Outcome)
	require.EqualValues(t, 0, res.MatchedCount)
	require.EqualValues(t, 1, res.UpsertedCount)
	require.NotNil(t, res.UpsertedID)
	require.Equal(t, id, res.UpsertedID.Hex())

	got, err := r.FindByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, record.Record{record.IDField: *res.UpsertedID, "publicationsDesc": "v2"}, got)
}

func TestMemoryRepoUpdateEmptyFieldsStillUpserts(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	id := primitive.NewObjectID().Hex()

	res, err := r.UpdateByID(ctx, id, record.Record{})
	require.NoError(t, err)
	require.Equal(t, Created, res.Outcome)

	again, err := r.UpdateByID(ctx, id, nil)
	require.NoError(t, err)
	require.Equal(t, Updated, again.Outcome)
	require.EqualValues(t, 1, again.MatchedCount)
	require.EqualValues(t, 0, again.ModifiedCount)
}

func TestMemoryRepoUpdateCannotChangeID(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	ins, err := r.Insert(ctx, record.Record{"a": "1"})
	require.NoError(t, err)

	_, err = r.UpdateByID(ctx, ins.InsertedID.Hex(), record.Record{record.IDField: primitive.NewObjectID(), "a": "2"})
	require.NoError(t, err)

	got, err := r.FindByID(ctx, ins.InsertedID.Hex())
	require.NoError(t, err)
	require.Equal(t, ins.InsertedID, got.ID())
	require.Equal(t, "2", got["a"])
}

func TestMemoryRepoDeleteMissingIsNotAnError(t *testing.T) {
	r := NewMemoryRepo()
	res, err := r.DeleteByID(context.Background(), primitive.NewObjectID().Hex())
	require.NoError(t, err)
	require.EqualValues(t, 0, res.DeletedCount)
}

func TestMemoryRepoInvalidID(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()

	_, err := r.FindByID(ctx, "not-an-id")
	require.True(t, errors.Is(err, record.ErrInvalidID))
	_, err = r.UpdateByID(ctx, "zzz", record.Record{"a": 1})
	require.True(t, errors.Is(err, record.ErrInvalidID))
	_, err = r.DeleteByID(ctx, "123")
	require.True(t, errors.Is(err, record.ErrInvalidID))
}

func TestMemoryRepoFindAllEmpty(t *testing.T) {
	list, err := NewMemoryRepo().FindAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "created", Created.String())
	require.Equal(t, "updated", Updated.String())
}
