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

const startedWorkoutCollectionName = "started_workouts"

// mongoStartedWorkoutRepository implements repository.StartedWorkoutRepository
type mongoStartedWorkoutRepository struct {
	*collection[domain.StartedWorkout]
}

// NewMongoStartedWorkoutRepository creates a new StartedWorkout repository.
func NewMongoStartedWorkoutRepository(db *mongo.Database) repository.StartedWorkoutRepository {
	return &mongoStartedWorkoutRepository{
		collection: &collection[domain.StartedWorkout]{
			coll:    db.Collection(startedWorkoutCollectionName),
			prepare: repository.PrepareStartedWorkout,
		},
	}
}

// MoveExercise marks an exercise as finished. The filter only matches while the
// exercise is still listed as unfinished.
func (r *mongoStartedWorkoutRepository) MoveExercise(ctx context.Context, id, exerciseID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "unfinishedExercises": exerciseID}
	update := bson.M{
		"$pull": bson.M{"unfinishedExercises": exerciseID},
		"$push": bson.M{"finishedExercises": exerciseID},
	}
	return r.updateOne(ctx, filter, update)
}

// EnsureStartedWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureStartedWorkoutIndexes(ctx context.Context, collection *mongo.Collection, logger *zap.Logger) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "workout", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn("failed to create indexes", zap.String("collection", collection.Name()), zap.Error(err))
	}
}
