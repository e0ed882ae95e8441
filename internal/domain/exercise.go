// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise owned by a user. Exercises are created
// directly or as a byproduct of composing a workout template.
type Exercise struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner            primitive.ObjectID `bson:"owner" json:"owner"` // Set once at creation, never patched
	Name             string             `bson:"name" json:"name"`
	Muscles          []int              `bson:"muscles" json:"muscles"`                   // Primary muscle codes, at least one
	MusclesSecondary []int              `bson:"musclesSecondary,omitempty" json:"musclesSecondary,omitempty"`
	Category         []int              `bson:"category,omitempty" json:"category,omitempty"`
	Equipment        []int              `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	Sets             float64            `bson:"sets" json:"sets"`
	Repetitions      float64            `bson:"repetitions" json:"repetitions"`
	Weight           float64            `bson:"weight" json:"weight"`
	RestTime         float64            `bson:"restTime" json:"restTime"` // Seconds
	CatalogID        int                `bson:"catalogId,omitempty" json:"catalogId,omitempty"`
	VideoKey         string             `bson:"videoKey,omitempty" json:"-"` // S3 object key, internal use

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OwnerID implements Owned.
func (e *Exercise) OwnerID() primitive.ObjectID { return e.Owner }
