// internal/repository/mongo/workout_template_repo.go
package mongo

import (
	"context"
	"time"

	"fittrack/workout-api/internal/domain"
	"fittrack/workout-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const workoutTemplateCollectionName = "workout_templates"

// mongoWorkoutTemplateRepository implements repository.WorkoutTemplateRepository
type mongoWorkoutTemplateRepository struct {
	*collection[domain.WorkoutTemplate]
}

// NewMongoWorkoutTemplateRepository creates a new WorkoutTemplate repository.
func NewMongoWorkoutTemplateRepository(db *mongo.Database) repository.WorkoutTemplateRepository {
	return &mongoWorkoutTemplateRepository{
		collection: &collection[domain.WorkoutTemplate]{
			coll:    db.Collection(workoutTemplateCollectionName),
			prepare: repository.PrepareWorkoutTemplate,
		},
	}
}

// AppendExercise pushes one exercise reference. With a seed the update upserts,
// inserting the seed's owner, name and duration when no template has this id.
func (r *mongoWorkoutTemplateRepository) AppendExercise(ctx context.Context, id, exerciseID primitive.ObjectID, seed *domain.WorkoutTemplate) error {
	now := time.Now().UTC()
	update := bson.M{
		"$push": bson.M{repository.FieldExercises: exerciseID},
		"$set":  bson.M{repository.FieldUpdatedAt: now},
	}

	updateOptions := options.Update()
	if seed != nil {
		if seed.Owner == primitive.NilObjectID {
			return repository.ErrMissingOwner
		}
		update["$setOnInsert"] = bson.M{
			repository.FieldOwner:        seed.Owner,
			"name":                       seed.Name,
			"approximateDuration":        seed.ApproximateDuration,
			repository.FieldLikes:        []primitive.ObjectID{},
			repository.FieldUsersUsingIt: []primitive.ObjectID{},
			repository.FieldCreatedAt:    now,
		}
		updateOptions.SetUpsert(true)
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update, updateOptions)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoWorkoutTemplateRepository) AddToSet(ctx context.Context, id primitive.ObjectID, field string, userID primitive.ObjectID) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{field: userID}})
}

func (r *mongoWorkoutTemplateRepository) Pull(ctx context.Context, id primitive.ObjectID, field string, userID primitive.ObjectID) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{field: userID}})
}

// EnsureWorkoutTemplateIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutTemplateIndexes(ctx context.Context, collection *mongo.Collection, logger *zap.Logger) {
	indexes := []mongo.IndexModel{
		{
			// /user-workout-templates
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "likes", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn("failed to create indexes", zap.String("collection", collection.Name()), zap.Error(err))
	}
}
