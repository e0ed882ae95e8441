package repository

import (
	"context"

	"fittrack/workout-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrMissingOwner = RepositoryError("owner is required")
	ErrDuplicateKey = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Filter narrows Find and Count. The zero value matches every record.
type Filter struct {
	Owner *primitive.ObjectID
}

// OwnedBy returns a filter matching records owned by id.
func OwnedBy(id primitive.ObjectID) Filter {
	return Filter{Owner: &id}
}

// Fields is a partial update keyed by stored (bson) field name.
// Only the keys present are written; updatedAt is always refreshed.
type Fields map[string]interface{}

// Store is the entity store contract shared by every owned collection.
type Store[T any] interface {
	Create(ctx context.Context, record *T) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	Find(ctx context.Context, filter Filter) ([]T, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, fields Fields) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Store[domain.Exercise]
	// GetByIDs resolves references in the order given. Identifiers with no
	// matching record are skipped.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
}

// WorkoutTemplateRepository defines the interface for interacting with workout templates.
type WorkoutTemplateRepository interface {
	Store[domain.WorkoutTemplate]
	// AppendExercise pushes exerciseID onto the template's exercise list without
	// a duplicate check. When seed is non-nil and no template matches id, a new
	// template is inserted from seed with _id = id (upsert). When seed is nil a
	// missing template yields ErrNotFound.
	AppendExercise(ctx context.Context, id, exerciseID primitive.ObjectID, seed *domain.WorkoutTemplate) error
	// AddToSet and Pull maintain set-like user lists such as likes and usersUsingIt.
	AddToSet(ctx context.Context, id primitive.ObjectID, field string, userID primitive.ObjectID) error
	Pull(ctx context.Context, id primitive.ObjectID, field string, userID primitive.ObjectID) error
}

// StartedWorkoutRepository defines the interface for interacting with workout sessions.
type StartedWorkoutRepository interface {
	Store[domain.StartedWorkout]
	// MoveExercise removes exerciseID from unfinishedExercises and appends it to
	// finishedExercises.
	MoveExercise(ctx context.Context, id, exerciseID primitive.ObjectID) error
}

// Stored field names shared by the services and the store implementations.
const (
	FieldOwner        = "owner"
	FieldExercises    = "exercises"
	FieldLikes        = "likes"
	FieldUsersUsingIt = "usersUsingIt"
	FieldUpdatedAt    = "updatedAt"
	FieldCreatedAt    = "createdAt"
)
