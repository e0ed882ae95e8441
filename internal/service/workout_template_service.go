package service

import (
	"context"
	"errors"
	"strings"

	"fittrack/workout-api/internal/domain"
	"fittrack/workout-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutTemplateDetails is a template with its exercise references resolved.
// References to deleted exercises are absent from ExerciseDetails.
type WorkoutTemplateDetails struct {
	domain.WorkoutTemplate
	ExerciseDetails []domain.Exercise
}

// WorkoutTemplateDraft creates a template from existing exercises.
type WorkoutTemplateDraft struct {
	Name                string   `json:"name"`
	Exercises           []string `json:"exercises"`
	ApproximateDuration float64  `json:"approximateDuration"`
}

func (d WorkoutTemplateDraft) Validate() error {
	return firstError(
		requireName("name", d.Name),
		nonNegative("approximateDuration", d.ApproximateDuration),
	)
}

// WorkoutTemplatePatch is a partial template update. Likes and usersUsingIt
// are maintained by their own operations and cannot be patched.
type WorkoutTemplatePatch struct {
	Name                *string   `json:"name"`
	Exercises           *[]string `json:"exercises"`
	ApproximateDuration *float64  `json:"approximateDuration"`
}

func (p WorkoutTemplatePatch) Validate() error {
	if p.Name != nil {
		if err := requireName("name", *p.Name); err != nil {
			return err
		}
	}
	if p.ApproximateDuration != nil {
		return nonNegative("approximateDuration", *p.ApproximateDuration)
	}
	return nil
}

// Fields returns the stored fields the patch writes.
func (p WorkoutTemplatePatch) Fields() (repository.Fields, error) {
	fields := repository.Fields{}
	if p.Name != nil {
		fields["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Exercises != nil {
		ids, err := parseObjectIDs("exercises", *p.Exercises)
		if err != nil {
			return nil, err
		}
		fields[repository.FieldExercises] = ids
	}
	if p.ApproximateDuration != nil {
		fields["approximateDuration"] = *p.ApproximateDuration
	}
	return fields, nil
}

// WorkoutTemplateOptions tunes template behavior.
type WorkoutTemplateOptions struct {
	// UpsertOnAppend makes AppendExercise create a template owned by the
	// caller when none exists under the target id, instead of failing with
	// ErrNotFound.
	UpsertOnAppend bool
}

// WorkoutTemplateService manages workout templates.
type WorkoutTemplateService interface {
	ResourceService[WorkoutTemplateDetails, WorkoutTemplateDraft, WorkoutTemplatePatch]
	AppendExercise(ctx context.Context, principal, id, exerciseID primitive.ObjectID) (*WorkoutTemplateDetails, error)
	Like(ctx context.Context, principal, id primitive.ObjectID) (*WorkoutTemplateDetails, error)
	Unlike(ctx context.Context, principal, id primitive.ObjectID) (*WorkoutTemplateDetails, error)
}

type workoutTemplateService struct {
	templates ownedStore[domain.WorkoutTemplate, *domain.WorkoutTemplate]
	repo      repository.WorkoutTemplateRepository
	exercises repository.ExerciseRepository
	namer     WorkoutNamer
	opts      WorkoutTemplateOptions
}

// NewWorkoutTemplateService creates a WorkoutTemplateService.
func NewWorkoutTemplateService(repo repository.WorkoutTemplateRepository, exercises repository.ExerciseRepository, namer WorkoutNamer, opts WorkoutTemplateOptions) WorkoutTemplateService {
	return &workoutTemplateService{
		templates: ownedStore[domain.WorkoutTemplate, *domain.WorkoutTemplate]{store: repo, kind: "workout template"},
		repo:      repo,
		exercises: exercises,
		namer:     namer,
		opts:      opts,
	}
}

func (s *workoutTemplateService) List(ctx context.Context, filter repository.Filter) ([]WorkoutTemplateDetails, error) {
	templates, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, templates...)
}

func (s *workoutTemplateService) Get(ctx context.Context, id primitive.ObjectID) (*WorkoutTemplateDetails, error) {
	template, err := s.templates.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.expandOne(ctx, template)
}

func (s *workoutTemplateService) Create(ctx context.Context, principal primitive.ObjectID, draft WorkoutTemplateDraft) (*WorkoutTemplateDetails, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	ids, err := parseObjectIDs("exercises", draft.Exercises)
	if err != nil {
		return nil, err
	}
	created, err := s.templates.create(ctx, &domain.WorkoutTemplate{
		Owner:               principal,
		Name:                strings.TrimSpace(draft.Name),
		Exercises:           ids,
		ApproximateDuration: draft.ApproximateDuration,
	})
	if err != nil {
		return nil, err
	}
	return s.expandOne(ctx, created)
}

func (s *workoutTemplateService) Update(ctx context.Context, principal, id primitive.ObjectID, patch WorkoutTemplatePatch) (*WorkoutTemplateDetails, error) {
	fields, fieldsErr := patch.Fields()
	validate := func(*domain.WorkoutTemplate) error {
		if fieldsErr != nil {
			return fieldsErr
		}
		return patch.Validate()
	}
	updated, err := s.templates.update(ctx, principal, id, validate, fields)
	if err != nil {
		return nil, err
	}
	return s.expandOne(ctx, updated)
}

func (s *workoutTemplateService) Delete(ctx context.Context, principal, id primitive.ObjectID) error {
	_, err := s.templates.delete(ctx, principal, id)
	return err
}

// AppendExercise pushes exerciseID onto the template's list. Duplicates are
// allowed. A missing template is created on the fly when UpsertOnAppend is set.
func (s *workoutTemplateService) AppendExercise(ctx context.Context, principal, id, exerciseID primitive.ObjectID) (*WorkoutTemplateDetails, error) {
	_, err := s.templates.authorize(ctx, principal, id)
	switch {
	case err == nil:
		if err := s.repo.AppendExercise(ctx, id, exerciseID, nil); err != nil {
			return nil, s.templates.translate(id, err)
		}
	case errors.Is(err, ErrNotFound) && s.opts.UpsertOnAppend:
		name, err := s.namer.NextWorkoutName(ctx)
		if err != nil {
			return nil, err
		}
		seed := &domain.WorkoutTemplate{Owner: principal, Name: name}
		if err := s.repo.AppendExercise(ctx, id, exerciseID, seed); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return s.Get(ctx, id)
}

// Like records principal in the template's likes. Liking twice is a no-op.
// Any authenticated user may like any template.
func (s *workoutTemplateService) Like(ctx context.Context, principal, id primitive.ObjectID) (*WorkoutTemplateDetails, error) {
	return s.changeUserList(ctx, id, func() error {
		return s.repo.AddToSet(ctx, id, repository.FieldLikes, principal)
	})
}

func (s *workoutTemplateService) Unlike(ctx context.Context, principal, id primitive.ObjectID) (*WorkoutTemplateDetails, error) {
	return s.changeUserList(ctx, id, func() error {
		return s.repo.Pull(ctx, id, repository.FieldLikes, principal)
	})
}

func (s *workoutTemplateService) changeUserList(ctx context.Context, id primitive.ObjectID, change func() error) (*WorkoutTemplateDetails, error) {
	if _, err := s.templates.resolve(ctx, id); err != nil {
		return nil, err
	}
	if err := change(); err != nil {
		return nil, s.templates.translate(id, err)
	}
	return s.Get(ctx, id)
}

func (s *workoutTemplateService) expandOne(ctx context.Context, template *domain.WorkoutTemplate) (*WorkoutTemplateDetails, error) {
	details, err := s.expand(ctx, *template)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// expand resolves the exercise references of every template with a single
// store lookup, preserving each template's order.
func (s *workoutTemplateService) expand(ctx context.Context, templates ...domain.WorkoutTemplate) ([]WorkoutTemplateDetails, error) {
	var ids []primitive.ObjectID
	seen := make(map[primitive.ObjectID]struct{})
	for _, t := range templates {
		for _, id := range t.Exercises {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	byID := make(map[primitive.ObjectID]domain.Exercise, len(ids))
	if len(ids) > 0 {
		exercises, err := s.exercises.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, e := range exercises {
			byID[e.ID] = e
		}
	}

	details := make([]WorkoutTemplateDetails, 0, len(templates))
	for _, t := range templates {
		resolved := make([]domain.Exercise, 0, len(t.Exercises))
		for _, id := range t.Exercises {
			if e, ok := byID[id]; ok {
				resolved = append(resolved, e)
			}
		}
		details = append(details, WorkoutTemplateDetails{WorkoutTemplate: t, ExerciseDetails: resolved})
	}
	return details, nil
}
