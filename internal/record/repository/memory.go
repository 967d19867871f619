package repository

import (
	"context"
	"sync"

	"github.com/vrdlab/vrdlab/backend/go-services/internal/record"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo is an in-memory Repository used by unit tests and by the server
// when no MongoDB URI is configured. It follows MongoRepo's semantics,
// including upsert on update and ObjectID identifiers.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]record.Record
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[primitive.ObjectID]record.Record)}
}

func (m *MemoryRepo) Insert(ctx context.Context, doc record.Record) (*InsertResult, error) {
	stored := doc.WithoutID()
	oid := primitive.NewObjectID()
	stored[record.IDField] = oid
	m.mu.Lock()
	m.store[oid] = stored
	m.mu.Unlock()
	return &InsertResult{Acknowledged: true, InsertedID: oid, Record: stored.Clone()}, nil
}

func (m *MemoryRepo) FindAll(ctx context.Context) ([]record.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]record.Record, 0, len(m.store))
	for _, d := range m.store {
		out = append(out, d.Clone())
	}
	return out, nil
}

func (m *MemoryRepo) FindByID(ctx context.Context, id string) (record.Record, error) {
	oid, err := record.ParseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.store[oid]; ok {
		return d.Clone(), nil
	}
	return nil, nil
}

func (m *MemoryRepo) UpdateByID(ctx context.Context, id string, fields record.Record) (*UpdateResult, error) {
	oid, err := record.ParseID(id)
	if err != nil {
		return nil, err
	}
	set := fields.WithoutID()
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[oid]
	if !ok {
		d = record.Record{record.IDField: oid}
		for k, v := range set {
			d[k] = v
		}
		m.store[oid] = d
		upserted := oid
		return &UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &upserted, Outcome: Created}, nil
	}
	modified := false
	for k, v := range set {
		if cur, exists := d[k]; !exists || !equalValue(cur, v) {
			modified = true
		}
		d[k] = v
	}
	res := &UpdateResult{Acknowledged: true, MatchedCount: 1, Outcome: Updated}
	if modified {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (m *MemoryRepo) DeleteByID(ctx context.Context, id string) (*DeleteResult, error) {
	oid, err := record.ParseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[oid]; !ok {
		return &DeleteResult{Acknowledged: true}, nil
	}
	delete(m.store, oid)
	return &DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

// equalValue compares scalar field values; anything not comparable counts as
// changed.
func equalValue(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
