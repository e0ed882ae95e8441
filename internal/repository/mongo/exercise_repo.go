package mongo

import (
	"context"

	"fittrack/workout-api/internal/domain"
	"fittrack/workout-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	*collection[domain.Exercise]
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: &collection[domain.Exercise]{
			coll:    db.Collection(exerciseCollectionName),
			prepare: repository.PrepareExercise,
		},
	}
}

// GetByIDs resolves exercise references, keeping the order of ids.
// Dangling references (deleted exercises) are dropped.
func (r *mongoExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	if len(ids) == 0 {
		return []domain.Exercise{}, nil
	}

	found, err := r.findAll(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]domain.Exercise, len(found))
	for _, exercise := range found {
		byID[exercise.ID] = exercise
	}

	// A template may reference the same exercise more than once.
	ordered := make([]domain.Exercise, 0, len(ids))
	for _, id := range ids {
		if exercise, ok := byID[id]; ok {
			ordered = append(ordered, exercise)
		}
	}
	return ordered, nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection, logger *zap.Logger) {
	indexes := []mongo.IndexModel{
		{
			// "My exercises" lookups
			Keys:    bson.D{{Key: "owner", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("exercise_text_search"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn("failed to create indexes", zap.String("collection", collection.Name()), zap.Error(err))
	}
}
