package repository

import (
	"context"

	"github.com/vrdlab/vrdlab/backend/go-services/internal/record"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outcome tells callers which branch of an upsert ran.
type Outcome int

const (
	Updated Outcome = iota
	Created
)

func (o Outcome) String() string {
	if o == Created {
		return "created"
	}
	return "updated"
}

// InsertResult mirrors the driver acknowledgement sent to clients.
// Record is the stored copy including its generated identifier.
type InsertResult struct {
	Acknowledged bool               `json:"acknowledged"`
	InsertedID   primitive.ObjectID `json:"insertedId"`
	Record       record.Record      `json:"-"`
}

// UpdateResult mirrors the driver acknowledgement of an upsert.
type UpdateResult struct {
	Acknowledged  bool                `json:"acknowledged"`
	MatchedCount  int64               `json:"matchedCount"`
	ModifiedCount int64               `json:"modifiedCount"`
	UpsertedCount int64               `json:"upsertedCount"`
	UpsertedID    *primitive.ObjectID `json:"upsertedId"`
	Outcome       Outcome             `json:"-"`
}

// DeleteResult reports how many records a delete removed (0 or 1).
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Repository is kind-agnostic access to one collection.
type Repository interface {
	Insert(ctx context.Context, doc record.Record) (*InsertResult, error)
	FindAll(ctx context.Context) ([]record.Record, error)
	// FindByID returns nil, nil when no record has the id.
	FindByID(ctx context.Context, id string) (record.Record, error)
	// UpdateByID sets fields on the matching record, creating it under the
	// requested id when none matches.
	UpdateByID(ctx context.Context, id string, fields record.Record) (*UpdateResult, error)
	DeleteByID(ctx context.Context, id string) (*DeleteResult, error)
}
