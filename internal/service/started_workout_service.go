package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"fittrack/workout-api/internal/domain"
	"fittrack/workout-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StartedWorkoutDraft starts a workout session. When Workout is set and
// UnfinishedExercises is omitted, the session is seeded with the template's
// exercises.
type StartedWorkoutDraft struct {
	Workout             string   `json:"workout"`
	FinishedExercises   []string `json:"finishedExercises"`
	UnfinishedExercises []string `json:"unfinishedExercises"`
	ApproximateDuration float64  `json:"approximateDuration"`
}

// StartedWorkoutPatch is a partial session update.
type StartedWorkoutPatch struct {
	Workout             *string   `json:"workout"`
	FinishedExercises   *[]string `json:"finishedExercises"`
	UnfinishedExercises *[]string `json:"unfinishedExercises"`
	ApproximateDuration *float64  `json:"approximateDuration"`
}

// Fields returns the stored fields the patch writes.
func (p StartedWorkoutPatch) Fields() (repository.Fields, error) {
	fields := repository.Fields{}
	if p.Workout != nil {
		id, err := primitive.ObjectIDFromHex(*p.Workout)
		if err != nil {
			return nil, invalid("workout", "must be a valid identifier")
		}
		fields["workout"] = id
	}
	if p.FinishedExercises != nil {
		ids, err := parseObjectIDs("finishedExercises", *p.FinishedExercises)
		if err != nil {
			return nil, err
		}
		fields["finishedExercises"] = ids
	}
	if p.UnfinishedExercises != nil {
		ids, err := parseObjectIDs("unfinishedExercises", *p.UnfinishedExercises)
		if err != nil {
			return nil, err
		}
		fields["unfinishedExercises"] = ids
	}
	if p.ApproximateDuration != nil {
		if err := nonNegative("approximateDuration", *p.ApproximateDuration); err != nil {
			return nil, err
		}
		fields["approximateDuration"] = *p.ApproximateDuration
	}
	return fields, nil
}

// StartedWorkoutService manages workout sessions.
type StartedWorkoutService interface {
	ResourceService[domain.StartedWorkout, StartedWorkoutDraft, StartedWorkoutPatch]
	FinishExercise(ctx context.Context, principal, id, exerciseID primitive.ObjectID) (*domain.StartedWorkout, error)
}

type startedWorkoutService struct {
	sessions  ownedStore[domain.StartedWorkout, *domain.StartedWorkout]
	repo      repository.StartedWorkoutRepository
	templates repository.WorkoutTemplateRepository
}

// NewStartedWorkoutService creates a StartedWorkoutService.
func NewStartedWorkoutService(repo repository.StartedWorkoutRepository, templates repository.WorkoutTemplateRepository) StartedWorkoutService {
	return &startedWorkoutService{
		sessions:  ownedStore[domain.StartedWorkout, *domain.StartedWorkout]{store: repo, kind: "started workout"},
		repo:      repo,
		templates: templates,
	}
}

func (s *startedWorkoutService) List(ctx context.Context, filter repository.Filter) ([]domain.StartedWorkout, error) {
	return s.repo.Find(ctx, filter)
}

func (s *startedWorkoutService) Get(ctx context.Context, id primitive.ObjectID) (*domain.StartedWorkout, error) {
	return s.sessions.resolve(ctx, id)
}

// Create starts a session and records the principal among the template's
// users.
func (s *startedWorkoutService) Create(ctx context.Context, principal primitive.ObjectID, draft StartedWorkoutDraft) (*domain.StartedWorkout, error) {
	if err := nonNegative("approximateDuration", draft.ApproximateDuration); err != nil {
		return nil, err
	}
	finished, err := parseObjectIDs("finishedExercises", draft.FinishedExercises)
	if err != nil {
		return nil, err
	}
	session := &domain.StartedWorkout{
		Owner:               principal,
		FinishedExercises:   finished,
		ApproximateDuration: draft.ApproximateDuration,
	}
	if draft.UnfinishedExercises != nil {
		if session.UnfinishedExercises, err = parseObjectIDs("unfinishedExercises", draft.UnfinishedExercises); err != nil {
			return nil, err
		}
	}

	var template *domain.WorkoutTemplate
	if draft.Workout != "" {
		templateID, err := primitive.ObjectIDFromHex(draft.Workout)
		if err != nil {
			return nil, invalid("workout", "must be a valid identifier")
		}
		template, err = s.templates.GetByID(ctx, templateID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, invalid("workout", "references a workout template that does not exist")
			}
			return nil, err
		}
		session.Workout = template.ID
		if draft.UnfinishedExercises == nil {
			session.UnfinishedExercises = append([]primitive.ObjectID(nil), template.Exercises...)
		}
	}

	created, err := s.sessions.create(ctx, session)
	if err != nil {
		return nil, err
	}
	if template != nil {
		if err := s.templates.AddToSet(ctx, template.ID, repository.FieldUsersUsingIt, principal); err != nil {
			return nil, fmt.Errorf("record template user: %w", err)
		}
	}
	return created, nil
}

func (s *startedWorkoutService) Update(ctx context.Context, principal, id primitive.ObjectID, patch StartedWorkoutPatch) (*domain.StartedWorkout, error) {
	fields, fieldsErr := patch.Fields()
	return s.sessions.update(ctx, principal, id, func(*domain.StartedWorkout) error { return fieldsErr }, fields)
}

func (s *startedWorkoutService) Delete(ctx context.Context, principal, id primitive.ObjectID) error {
	_, err := s.sessions.delete(ctx, principal, id)
	return err
}

// FinishExercise moves exerciseID from the unfinished to the finished list.
func (s *startedWorkoutService) FinishExercise(ctx context.Context, principal, id, exerciseID primitive.ObjectID) (*domain.StartedWorkout, error) {
	session, err := s.sessions.authorize(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(session.UnfinishedExercises, exerciseID) {
		return nil, invalid("exercise", "is not an unfinished exercise of this workout")
	}
	if err := s.repo.MoveExercise(ctx, id, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Finished concurrently, or the session was deleted in between.
			return nil, invalid("exercise", "is not an unfinished exercise of this workout")
		}
		return nil, err
	}
	return s.sessions.resolve(ctx, id)
}
