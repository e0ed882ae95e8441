// internal/domain/started_workout.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StartedWorkout is a workout session in progress. Exercises move from
// UnfinishedExercises to FinishedExercises as the user completes them.
type StartedWorkout struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Owner               primitive.ObjectID   `bson:"owner" json:"owner"`
	Workout             primitive.ObjectID   `bson:"workout,omitempty" json:"workout,omitempty"` // Template being performed
	FinishedExercises   []primitive.ObjectID `bson:"finishedExercises" json:"finishedExercises"`
	UnfinishedExercises []primitive.ObjectID `bson:"unfinishedExercises" json:"unfinishedExercises"`
	ApproximateDuration float64              `bson:"approximateDuration" json:"approximateDuration"`
	CreatedAt           time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (s *StartedWorkout) OwnerID() primitive.ObjectID { return s.Owner }
