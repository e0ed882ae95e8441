// Package memory implements the repository interfaces in process memory.
// It backs local runs (database.driver=memory) and the service and API tests.
package memory

import (
	"context"
	"sync"
	"time"

	"fittrack/workout-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// collection implements repository.Store[T]. Records are stored as deep
// copies so callers never share slices with the store.
type collection[T any] struct {
	mu      sync.RWMutex
	records map[primitive.ObjectID]*T
	order   []primitive.ObjectID

	ownerOf func(*T) primitive.ObjectID
	prepare func(*T, primitive.ObjectID, time.Time) error
}

func newCollection[T any](ownerOf func(*T) primitive.ObjectID, prepare func(*T, primitive.ObjectID, time.Time) error) *collection[T] {
	return &collection[T]{
		records: make(map[primitive.ObjectID]*T),
		ownerOf: ownerOf,
		prepare: prepare,
	}
}

func (c *collection[T]) Create(_ context.Context, record *T) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	if err := c.prepare(record, id, time.Now().UTC()); err != nil {
		return primitive.NilObjectID, err
	}
	stored, err := clone(record)
	if err != nil {
		return primitive.NilObjectID, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertLocked(id, stored)
	return id, nil
}

func (c *collection[T]) insertLocked(id primitive.ObjectID, record *T) {
	c.records[id] = record
	c.order = append(c.order, id)
}

func (c *collection[T]) GetByID(_ context.Context, id primitive.ObjectID) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(record)
}

func (c *collection[T]) Find(_ context.Context, filter repository.Filter) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	found := []T{}
	for _, id := range c.order {
		record := c.records[id]
		if !c.matches(record, filter) {
			continue
		}
		copied, err := clone(record)
		if err != nil {
			return nil, err
		}
		found = append(found, *copied)
	}
	return found, nil
}

func (c *collection[T]) Count(_ context.Context, filter repository.Filter) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, record := range c.records {
		if c.matches(record, filter) {
			n++
		}
	}
	return n, nil
}

func (c *collection[T]) matches(record *T, filter repository.Filter) bool {
	return filter.Owner == nil || c.ownerOf(record) == *filter.Owner
}

// Update overlays fields on the stored document, mirroring a $set. The owner
// and _id are never written.
func (c *collection[T]) Update(_ context.Context, id primitive.ObjectID, fields repository.Fields) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	record, ok := c.records[id]
	if !ok {
		return repository.ErrNotFound
	}

	set := bson.M{}
	for key, value := range fields {
		set[key] = value
	}
	delete(set, repository.FieldOwner)
	delete(set, "_id")
	set[repository.FieldUpdatedAt] = time.Now().UTC()

	updated, err := overlay(record, set)
	if err != nil {
		return err
	}
	c.records[id] = updated
	return nil
}

func (c *collection[T]) Delete(_ context.Context, id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.records[id]; !ok {
		return repository.ErrNotFound
	}
	delete(c.records, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// mutate runs fn against the stored record under the write lock.
func (c *collection[T]) mutate(id primitive.ObjectID, fn func(*T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	record, ok := c.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	return fn(record)
}

func clone[T any](record *T) (*T, error) {
	raw, err := bson.Marshal(record)
	if err != nil {
		return nil, err
	}
	var copied T
	if err := bson.Unmarshal(raw, &copied); err != nil {
		return nil, err
	}
	return &copied, nil
}

func overlay[T any](record *T, set bson.M) (*T, error) {
	raw, err := bson.Marshal(record)
	if err != nil {
		return nil, err
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for key, value := range set {
		doc[key] = value
	}

	raw, err = bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var updated T
	if err := bson.Unmarshal(raw, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	kept := make([]primitive.ObjectID, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	return kept
}
