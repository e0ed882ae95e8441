package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"fittrack/workout-api/internal/domain"
	"fittrack/workout-api/internal/repository"
	"fittrack/workout-api/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stores struct {
	exercises repository.ExerciseRepository
	templates repository.WorkoutTemplateRepository
	sessions  repository.StartedWorkoutRepository
	users     repository.UserRepository
}

func newStores() stores {
	return stores{
		exercises: memory.NewExerciseRepository(),
		templates: memory.NewWorkoutTemplateRepository(),
		sessions:  memory.NewStartedWorkoutRepository(),
		users:     memory.NewUserRepository(),
	}
}

func draft(name string) ExerciseDraft {
	return ExerciseDraft{Name: name, Muscles: []int{4}, Sets: 3, Repetitions: 10, Weight: 20, RestTime: 90}
}

func ptr[T any](v T) *T { return &v }

func seedExercise(t *testing.T, repo repository.ExerciseRepository, owner primitive.ObjectID, name string) domain.Exercise {
	t.Helper()
	e := draft(name).toExercise(owner)
	_, err := repo.Create(context.Background(), e)
	require.NoError(t, err)
	return *e
}

func seedTemplate(t *testing.T, repo repository.WorkoutTemplateRepository, owner primitive.ObjectID, name string, exercises ...primitive.ObjectID) domain.WorkoutTemplate {
	t.Helper()
	tmpl := &domain.WorkoutTemplate{Owner: owner, Name: name, Exercises: exercises}
	_, err := repo.Create(context.Background(), tmpl)
	require.NoError(t, err)
	return *tmpl
}

// fakeStorage records object operations without a network.
type fakeStorage struct {
	mu      sync.Mutex
	deleted []string
	failDel error
}

func (f *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	return "https://storage.test/upload/" + key + "?type=" + contentType, nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/download/" + key, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDel != nil {
		return f.failDel
	}
	f.deleted = append(f.deleted, key)
	return nil
}
