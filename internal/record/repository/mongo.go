package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/vrdlab/vrdlab/backend/go-services/internal/record"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// MongoRepo implements Repository over a MongoDB collection. Records are
// keyed by ObjectID in _id; the collection enforces no schema.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Insert(ctx context.Context, doc record.Record) (*InsertResult, error) {
	stored := doc.WithoutID()
	oid := primitive.NewObjectID()
	stored[record.IDField] = oid
	if _, err := m.col.InsertOne(ctx, bson.M(stored)); err != nil {
		return nil, wrapErr("insert", err)
	}
	return &InsertResult{Acknowledged: true, InsertedID: oid, Record: stored}, nil
}

func (m *MongoRepo) FindAll(ctx context.Context) ([]record.Record, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, wrapErr("find all", err)
	}
	defer cur.Close(ctx)
	out := []record.Record{}
	for cur.Next(ctx) {
		var d bson.M
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		out = append(out, record.Record(d))
	}
	if err := cur.Err(); err != nil {
		return nil, wrapErr("find all", err)
	}
	return out, nil
}

func (m *MongoRepo) FindByID(ctx context.Context, id string) (record.Record, error) {
	oid, err := record.ParseID(id)
	if err != nil {
		return nil, err
	}
	var d bson.M
	if err := m.col.FindOne(ctx, bson.M{record.IDField: oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrapErr("find by id", err)
	}
	return record.Record(d), nil
}

func (m *MongoRepo) UpdateByID(ctx context.Context, id string, fields record.Record) (*UpdateResult, error) {
	oid, err := record.ParseID(id)
	if err != nil {
		return nil, err
	}
	filter := bson.M{record.IDField: oid}
	set := fields.WithoutID()
	// $set rejects an empty document; $setOnInsert of the filter id keeps the
	// upsert behaviour for bodies with no fields.
	update := bson.M{"$set": bson.M(set)}
	if len(set) == 0 {
		update = bson.M{"$setOnInsert": bson.M{record.IDField: oid}}
	}
	opts := options.Update().SetUpsert(true)
	res, err := m.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return nil, wrapErr("update by id", err)
	}
	out := &UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		Outcome:       Updated,
	}
	if res.UpsertedCount > 0 {
		out.Outcome = Created
		out.UpsertedID = &oid
	}
	return out, nil
}

func (m *MongoRepo) DeleteByID(ctx context.Context, id string) (*DeleteResult, error) {
	oid, err := record.ParseID(id)
	if err != nil {
		return nil, err
	}
	res, err := m.col.DeleteOne(ctx, bson.M{record.IDField: oid})
	if err != nil {
		return nil, wrapErr("delete by id", err)
	}
	return &DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

// wrapErr tags connectivity failures with record.ErrStorageUnavailable so the
// handler layer can tell them apart from data errors.
func wrapErr(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, record.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	var sse topology.ServerSelectionError
	if errors.As(err, &sse) {
		return true
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}
