package repository

import (
	"time"

	"fittrack/workout-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The Prepare functions run inside Store.Create for every backend: they assign
// the identifier and timestamps and refuse records without an owner.

func PrepareExercise(exercise *domain.Exercise, id primitive.ObjectID, now time.Time) error {
	if exercise.Owner == primitive.NilObjectID {
		return ErrMissingOwner
	}
	exercise.ID = id
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	if exercise.Muscles == nil {
		exercise.Muscles = []int{}
	}
	return nil
}

func PrepareWorkoutTemplate(template *domain.WorkoutTemplate, id primitive.ObjectID, now time.Time) error {
	if template.Owner == primitive.NilObjectID {
		return ErrMissingOwner
	}
	template.ID = id
	template.CreatedAt = now
	template.UpdatedAt = now
	template.Exercises = EmptyIfNil(template.Exercises)
	template.Likes = EmptyIfNil(template.Likes)
	template.UsersUsingIt = EmptyIfNil(template.UsersUsingIt)
	return nil
}

func PrepareStartedWorkout(session *domain.StartedWorkout, id primitive.ObjectID, now time.Time) error {
	if session.Owner == primitive.NilObjectID {
		return ErrMissingOwner
	}
	session.ID = id
	session.CreatedAt = now
	session.UpdatedAt = now
	session.FinishedExercises = EmptyIfNil(session.FinishedExercises)
	session.UnfinishedExercises = EmptyIfNil(session.UnfinishedExercises)
	return nil
}

// EmptyIfNil keeps reference lists stored as [] rather than null so that
// $push and $addToSet always operate on an array.
func EmptyIfNil(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}
