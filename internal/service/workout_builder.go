package service

import (
	"context"
	"fmt"

	"fittrack/workout-api/internal/domain"
	"fittrack/workout-api/internal/metrics"
	"fittrack/workout-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WorkoutBuilder turns a list of new exercise drafts into a workout template
// in one request.
type WorkoutBuilder struct {
	exercises repository.ExerciseRepository
	templates repository.WorkoutTemplateRepository
	namer     WorkoutNamer
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewWorkoutBuilder creates a WorkoutBuilder. m may be nil.
func NewWorkoutBuilder(exercises repository.ExerciseRepository, templates repository.WorkoutTemplateRepository, namer WorkoutNamer, m *metrics.Metrics, logger *zap.Logger) *WorkoutBuilder {
	return &WorkoutBuilder{
		exercises: exercises,
		templates: templates,
		namer:     namer,
		metrics:   m,
		logger:    logger,
	}
}

// CreateWorkoutFromExercises creates one exercise per draft concurrently, then
// a template owned by owner listing them in draft order and named by the
// namer.
//
// There is no rollback. If any draft fails, exercises already created stay in
// the store without a template, and the first error is returned. Every draft
// is attempted even after a sibling has failed.
func (b *WorkoutBuilder) CreateWorkoutFromExercises(ctx context.Context, owner primitive.ObjectID, drafts []ExerciseDraft) (*domain.WorkoutTemplate, error) {
	if len(drafts) == 0 {
		return nil, invalid("exercises", "must contain at least one exercise")
	}

	ids := make([]primitive.ObjectID, len(drafts))
	var g errgroup.Group
	for i, draft := range drafts {
		g.Go(func() error {
			if err := draft.Validate(); err != nil {
				return fmt.Errorf("exercises[%d]: %w", i, err)
			}
			id, err := b.exercises.Create(ctx, draft.toExercise(owner))
			if err != nil {
				return fmt.Errorf("exercises[%d]: %w", i, err)
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		b.reportOrphans(owner, ids, err)
		return nil, err
	}

	name, err := b.namer.NextWorkoutName(ctx)
	if err != nil {
		b.reportOrphans(owner, ids, err)
		return nil, err
	}

	template := &domain.WorkoutTemplate{Owner: owner, Name: name, Exercises: ids}
	if _, err := b.templates.Create(ctx, template); err != nil {
		b.reportOrphans(owner, ids, err)
		return nil, err
	}
	b.metrics.WorkoutComposed(len(ids))
	return template, nil
}

func (b *WorkoutBuilder) reportOrphans(owner primitive.ObjectID, ids []primitive.ObjectID, cause error) {
	var orphaned []string
	for _, id := range ids {
		if id != primitive.NilObjectID {
			orphaned = append(orphaned, id.Hex())
		}
	}
	if len(orphaned) == 0 {
		return
	}
	b.metrics.ExercisesOrphaned(len(orphaned))
	b.logger.Warn("workout composition failed, created exercises left without a template",
		zap.String("owner", owner.Hex()),
		zap.Strings("exerciseIds", orphaned),
		zap.Error(cause))
}
