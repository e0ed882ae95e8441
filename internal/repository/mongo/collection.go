package mongo

import (
	"context"
	"errors"
	"time"

	"fittrack/workout-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection implements repository.Store[T] over a single MongoDB collection.
// The concrete repositories embed it and add their entity specific queries.
type collection[T any] struct {
	coll *mongo.Collection
	// prepare assigns the identifier and timestamps and rejects records the
	// collection cannot store (e.g. without an owner).
	prepare func(record *T, id primitive.ObjectID, now time.Time) error
}

func (c *collection[T]) Create(ctx context.Context, record *T) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	if err := c.prepare(record, id, time.Now().UTC()); err != nil {
		return primitive.NilObjectID, err
	}

	result, err := c.coll.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (c *collection[T]) GetByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var record T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (c *collection[T]) Find(ctx context.Context, filter repository.Filter) ([]T, error) {
	// Oldest first, the order records were created in.
	findOptions := options.Find().SetSort(bson.D{{Key: repository.FieldCreatedAt, Value: 1}})
	return c.findAll(ctx, filterDocument(filter), findOptions)
}

func (c *collection[T]) findAll(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []T{}
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *collection[T]) Count(ctx context.Context, filter repository.Filter) (int64, error) {
	return c.coll.CountDocuments(ctx, filterDocument(filter))
}

// Update writes only the given fields. The owner is never written here.
func (c *collection[T]) Update(ctx context.Context, id primitive.ObjectID, fields repository.Fields) error {
	set := bson.M{}
	for key, value := range fields {
		set[key] = value
	}
	delete(set, repository.FieldOwner)
	delete(set, "_id")
	set[repository.FieldUpdatedAt] = time.Now().UTC()

	result, err := c.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (c *collection[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// updateOne runs an update operator document against a single record and
// maps an unmatched filter to repository.ErrNotFound.
func (c *collection[T]) updateOne(ctx context.Context, filter, update bson.M) error {
	if set, ok := update["$set"].(bson.M); ok {
		set[repository.FieldUpdatedAt] = time.Now().UTC()
	} else {
		update["$set"] = bson.M{repository.FieldUpdatedAt: time.Now().UTC()}
	}

	result, err := c.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func filterDocument(filter repository.Filter) bson.M {
	doc := bson.M{}
	if filter.Owner != nil {
		doc[repository.FieldOwner] = *filter.Owner
	}
	return doc
}

