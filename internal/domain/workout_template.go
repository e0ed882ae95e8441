// internal/domain/workout_template.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutTemplate is an ordered list of exercise references that users can
// start, like and share. The exercise list holds identifiers only.
type WorkoutTemplate struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Owner               primitive.ObjectID   `bson:"owner" json:"owner"`
	Name                string               `bson:"name" json:"name"`
	Exercises           []primitive.ObjectID `bson:"exercises" json:"exercises"` // Order is the workout order
	ApproximateDuration float64              `bson:"approximateDuration" json:"approximateDuration"`
	Likes               []primitive.ObjectID `bson:"likes" json:"likes"`
	UsersUsingIt        []primitive.ObjectID `bson:"usersUsingIt" json:"usersUsingIt"`
	CreatedAt           time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (w *WorkoutTemplate) OwnerID() primitive.ObjectID { return w.Owner }
