package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fittrack/workout-api/internal/domain"
	"fittrack/workout-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Exercises ---

type exerciseRepository struct {
	*collection[domain.Exercise]
}

// NewExerciseRepository returns an in-memory repository.ExerciseRepository.
func NewExerciseRepository() repository.ExerciseRepository {
	return &exerciseRepository{
		collection: newCollection(
			func(e *domain.Exercise) primitive.ObjectID { return e.Owner },
			repository.PrepareExercise,
		),
	}
}

func (r *exerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	resolved := make([]domain.Exercise, 0, len(ids))
	for _, id := range ids {
		exercise, err := r.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, *exercise)
	}
	return resolved, nil
}

// --- Workout templates ---

type workoutTemplateRepository struct {
	*collection[domain.WorkoutTemplate]
}

// NewWorkoutTemplateRepository returns an in-memory repository.WorkoutTemplateRepository.
func NewWorkoutTemplateRepository() repository.WorkoutTemplateRepository {
	return &workoutTemplateRepository{
		collection: newCollection(
			func(w *domain.WorkoutTemplate) primitive.ObjectID { return w.Owner },
			repository.PrepareWorkoutTemplate,
		),
	}
}

func (r *workoutTemplateRepository) AppendExercise(_ context.Context, id, exerciseID primitive.ObjectID, seed *domain.WorkoutTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if template, ok := r.records[id]; ok {
		template.Exercises = append(template.Exercises, exerciseID)
		template.UpdatedAt = now
		return nil
	}
	if seed == nil {
		return repository.ErrNotFound
	}

	inserted, err := clone(seed)
	if err != nil {
		return err
	}
	if err := repository.PrepareWorkoutTemplate(inserted, id, now); err != nil {
		return err
	}
	inserted.Exercises = []primitive.ObjectID{exerciseID}
	r.insertLocked(id, inserted)
	return nil
}

func (r *workoutTemplateRepository) AddToSet(_ context.Context, id primitive.ObjectID, field string, userID primitive.ObjectID) error {
	return r.mutate(id, func(template *domain.WorkoutTemplate) error {
		list, err := userList(template, field)
		if err != nil {
			return err
		}
		if !containsID(*list, userID) {
			*list = append(*list, userID)
		}
		template.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *workoutTemplateRepository) Pull(_ context.Context, id primitive.ObjectID, field string, userID primitive.ObjectID) error {
	return r.mutate(id, func(template *domain.WorkoutTemplate) error {
		list, err := userList(template, field)
		if err != nil {
			return err
		}
		*list = removeID(*list, userID)
		template.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func userList(template *domain.WorkoutTemplate, field string) (*[]primitive.ObjectID, error) {
	switch field {
	case repository.FieldLikes:
		return &template.Likes, nil
	case repository.FieldUsersUsingIt:
		return &template.UsersUsingIt, nil
	default:
		return nil, fmt.Errorf("memory: %q is not a user set on workout templates", field)
	}
}

// --- Started workouts ---

type startedWorkoutRepository struct {
	*collection[domain.StartedWorkout]
}

// NewStartedWorkoutRepository returns an in-memory repository.StartedWorkoutRepository.
func NewStartedWorkoutRepository() repository.StartedWorkoutRepository {
	return &startedWorkoutRepository{
		collection: newCollection(
			func(s *domain.StartedWorkout) primitive.ObjectID { return s.Owner },
			repository.PrepareStartedWorkout,
		),
	}
}

func (r *startedWorkoutRepository) MoveExercise(_ context.Context, id, exerciseID primitive.ObjectID) error {
	return r.mutate(id, func(session *domain.StartedWorkout) error {
		if !containsID(session.UnfinishedExercises, exerciseID) {
			return repository.ErrNotFound
		}
		session.UnfinishedExercises = removeID(session.UnfinishedExercises, exerciseID)
		session.FinishedExercises = append(session.FinishedExercises, exerciseID)
		session.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// --- Users ---

type userRepository struct {
	mu      sync.RWMutex
	byID    map[primitive.ObjectID]domain.User
	byEmail map[string]primitive.ObjectID
}

// NewUserRepository returns an in-memory repository.UserRepository.
func NewUserRepository() repository.UserRepository {
	return &userRepository{
		byID:    make(map[primitive.ObjectID]domain.User),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func (r *userRepository) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" {
		return primitive.NilObjectID, fmt.Errorf("user email and password hash are required")
	}
	key := strings.ToLower(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[key]; taken {
		return primitive.NilObjectID, repository.ErrDuplicateKey
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byID[user.ID] = *user
	r.byEmail[key] = user.ID
	return user.ID, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := r.byID[id]
	return &user, nil
}

func (r *userRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}
