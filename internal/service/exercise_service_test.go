package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fittrack/workout-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestExerciseDraftValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ExerciseDraft)
		wantErr string
	}{
		{"valid", func(*ExerciseDraft) {}, ""},
		{"missing name", func(d *ExerciseDraft) { d.Name = "" }, "name is required"},
		{"whitespace name", func(d *ExerciseDraft) { d.Name = "   " }, "name is required"},
		{"no muscles", func(d *ExerciseDraft) { d.Muscles = nil }, "muscles must list at least one muscle"},
		{"zero muscle code", func(d *ExerciseDraft) { d.Muscles = []int{0} }, "muscles must contain positive codes"},
		{"bad equipment", func(d *ExerciseDraft) { d.Equipment = []int{3, -1} }, "equipment must contain positive codes"},
		{"negative weight", func(d *ExerciseDraft) { d.Weight = -5 }, "weight must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := draft("Deadlift")
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidationFailed)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestExercisePatchFieldsOnlyIncludesProvided(t *testing.T) {
	patch := ExercisePatch{Name: ptr(" Front squat "), Sets: ptr(0.0)}
	assert.Equal(t, repository.Fields{"name": "Front squat", "sets": 0.0}, patch.Fields())
	assert.Empty(t, ExercisePatch{}.Fields())
}

func TestExerciseServiceCRUD(t *testing.T) {
	s := newStores()
	svc := NewExerciseService(s.exercises, nil, zap.NewNop())
	ctx := context.Background()
	owner := primitive.NewObjectID()

	created, err := svc.Create(ctx, owner, draft("Lunge"))
	require.NoError(t, err)
	assert.Equal(t, owner, created.Owner)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lunge", got.Name)

	updated, err := svc.Update(ctx, owner, created.ID, ExercisePatch{Repetitions: ptr(12.0), Muscles: ptr([]int{2, 3})})
	require.NoError(t, err)
	assert.Equal(t, 12.0, updated.Repetitions)
	assert.Equal(t, []int{2, 3}, updated.Muscles)
	assert.Equal(t, "Lunge", updated.Name, "fields not in the patch are untouched")
	assert.Equal(t, owner, updated.Owner)

	list, err := svc.List(ctx, repository.Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExerciseServiceOwnership(t *testing.T) {
	s := newStores()
	svc := NewExerciseService(s.exercises, nil, zap.NewNop())
	ctx := context.Background()
	owner, intruder := primitive.NewObjectID(), primitive.NewObjectID()
	exercise := seedExercise(t, s.exercises, owner, "Press")

	_, err := svc.Update(ctx, intruder, exercise.ID, ExercisePatch{Name: ptr("Mine now")})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.ErrorIs(t, svc.Delete(ctx, intruder, exercise.ID), ErrAccessDenied)

	stored, err := s.exercises.GetByID(ctx, exercise.ID)
	require.NoError(t, err)
	assert.Equal(t, "Press", stored.Name)
}

func TestExerciseServiceMissingTargetIsNotFoundBeforeOwnership(t *testing.T) {
	svc := NewExerciseService(newStores().exercises, nil, zap.NewNop())
	ctx := context.Background()
	missing := primitive.NewObjectID()

	_, err := svc.Update(ctx, primitive.NewObjectID(), missing, ExercisePatch{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrAccessDenied)
	assert.ErrorIs(t, svc.Delete(ctx, primitive.NewObjectID(), missing), ErrNotFound)
}

func TestExerciseServiceUpdateValidatesAfterOwnership(t *testing.T) {
	s := newStores()
	svc := NewExerciseService(s.exercises, nil, zap.NewNop())
	ctx := context.Background()
	owner := primitive.NewObjectID()
	exercise := seedExercise(t, s.exercises, owner, "Dip")

	_, err := svc.Update(ctx, owner, exercise.ID, ExercisePatch{Muscles: ptr([]int{})})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Update(ctx, primitive.NewObjectID(), exercise.ID, ExercisePatch{Muscles: ptr([]int{})})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExerciseServiceVideo(t *testing.T) {
	s := newStores()
	files := &fakeStorage{}
	svc := NewExerciseService(s.exercises, files, zap.NewNop())
	ctx := context.Background()
	owner := primitive.NewObjectID()
	exercise := seedExercise(t, s.exercises, owner, "Snatch")

	_, err := svc.GetVideoURL(ctx, exercise.ID)
	assert.ErrorIs(t, err, ErrNotFound, "no video uploaded yet")

	_, err = svc.RequestVideoUpload(ctx, owner, exercise.ID, "image/png")
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.RequestVideoUpload(ctx, primitive.NewObjectID(), exercise.ID, "video/mp4")
	assert.ErrorIs(t, err, ErrAccessDenied)

	upload, err := svc.RequestVideoUpload(ctx, owner, exercise.ID, "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.ObjectKey, "exercises/"+owner.Hex()+"/"+exercise.ID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(upload.ObjectKey, ".mp4"))
	assert.Contains(t, upload.UploadURL, upload.ObjectKey)

	url, err := svc.GetVideoURL(ctx, exercise.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.test/download/"+upload.ObjectKey, url)

	require.NoError(t, svc.Delete(ctx, owner, exercise.ID))
	assert.Equal(t, []string{upload.ObjectKey}, files.deleted)
}

func TestExerciseServiceDeleteIgnoresVideoCleanupFailure(t *testing.T) {
	s := newStores()
	files := &fakeStorage{failDel: errors.New("bucket unreachable")}
	svc := NewExerciseService(s.exercises, files, zap.NewNop())
	ctx := context.Background()
	owner := primitive.NewObjectID()
	exercise := seedExercise(t, s.exercises, owner, "Clean")
	_, err := svc.RequestVideoUpload(ctx, owner, exercise.ID, "video/webm")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, exercise.ID))
	_, err = s.exercises.GetByID(ctx, exercise.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestExerciseServiceVideoWithoutStorage(t *testing.T) {
	s := newStores()
	svc := NewExerciseService(s.exercises, nil, zap.NewNop())
	owner := primitive.NewObjectID()
	exercise := seedExercise(t, s.exercises, owner, "Jerk")

	_, err := svc.RequestVideoUpload(context.Background(), owner, exercise.ID, "video/mp4")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	_, err = svc.GetVideoURL(context.Background(), exercise.ID)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestVideoObjectKeyExtension(t *testing.T) {
	s := newStores()
	exercise := seedExercise(t, s.exercises, primitive.NewObjectID(), "Row")
	assert.True(t, strings.HasSuffix(videoObjectKey(&exercise, "video/quicktime"), ".quicktime"))
	assert.True(t, strings.HasSuffix(videoObjectKey(&exercise, "video/mp4; codecs=avc1"), ".mp4"))
	assert.True(t, strings.HasSuffix(videoObjectKey(&exercise, "video/"), ".bin"))
}
