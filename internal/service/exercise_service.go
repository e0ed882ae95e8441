package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"fittrack/workout-api/internal/domain"
	"fittrack/workout-api/internal/repository"
	"fittrack/workout-api/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ExerciseDraft is the client-supplied content of a new exercise. It carries
// no owner: the owner is always the authenticated principal.
type ExerciseDraft struct {
	Name             string  `json:"name"`
	Muscles          []int   `json:"muscles"`
	MusclesSecondary []int   `json:"musclesSecondary"`
	Category         []int   `json:"category"`
	Equipment        []int   `json:"equipment"`
	Description      string  `json:"description"`
	Sets             float64 `json:"sets"`
	Repetitions      float64 `json:"repetitions"`
	Weight           float64 `json:"weight"`
	RestTime         float64 `json:"restTime"`
	CatalogID        int     `json:"catalogId"`
}

// Validate checks the draft before it is persisted.
func (d ExerciseDraft) Validate() error {
	if err := requireName("name", d.Name); err != nil {
		return err
	}
	if len(d.Muscles) == 0 {
		return invalid("muscles", "must list at least one muscle")
	}
	return firstError(
		validCodes("muscles", d.Muscles),
		validCodes("musclesSecondary", d.MusclesSecondary),
		validCodes("category", d.Category),
		validCodes("equipment", d.Equipment),
		nonNegative("sets", d.Sets),
		nonNegative("repetitions", d.Repetitions),
		nonNegative("weight", d.Weight),
		nonNegative("restTime", d.RestTime),
	)
}

func (d ExerciseDraft) toExercise(owner primitive.ObjectID) *domain.Exercise {
	return &domain.Exercise{
		Owner:            owner,
		Name:             strings.TrimSpace(d.Name),
		Muscles:          d.Muscles,
		MusclesSecondary: d.MusclesSecondary,
		Category:         d.Category,
		Equipment:        d.Equipment,
		Description:      d.Description,
		Sets:             d.Sets,
		Repetitions:      d.Repetitions,
		Weight:           d.Weight,
		RestTime:         d.RestTime,
		CatalogID:        d.CatalogID,
	}
}

// ExercisePatch is a partial exercise update. Nil fields are left untouched.
type ExercisePatch struct {
	Name             *string  `json:"name"`
	Muscles          *[]int   `json:"muscles"`
	MusclesSecondary *[]int   `json:"musclesSecondary"`
	Category         *[]int   `json:"category"`
	Equipment        *[]int   `json:"equipment"`
	Description      *string  `json:"description"`
	Sets             *float64 `json:"sets"`
	Repetitions      *float64 `json:"repetitions"`
	Weight           *float64 `json:"weight"`
	RestTime         *float64 `json:"restTime"`
	CatalogID        *int     `json:"catalogId"`
}

// Validate checks only the fields present in the patch.
func (p ExercisePatch) Validate() error {
	var errs []error
	if p.Name != nil {
		errs = append(errs, requireName("name", *p.Name))
	}
	if p.Muscles != nil {
		if len(*p.Muscles) == 0 {
			errs = append(errs, invalid("muscles", "must list at least one muscle"))
		}
		errs = append(errs, validCodes("muscles", *p.Muscles))
	}
	if p.MusclesSecondary != nil {
		errs = append(errs, validCodes("musclesSecondary", *p.MusclesSecondary))
	}
	if p.Category != nil {
		errs = append(errs, validCodes("category", *p.Category))
	}
	if p.Equipment != nil {
		errs = append(errs, validCodes("equipment", *p.Equipment))
	}
	for _, f := range []struct {
		name  string
		value *float64
	}{{"sets", p.Sets}, {"repetitions", p.Repetitions}, {"weight", p.Weight}, {"restTime", p.RestTime}} {
		if f.value != nil {
			errs = append(errs, nonNegative(f.name, *f.value))
		}
	}
	return firstError(errs...)
}

// Fields returns the stored fields the patch writes.
func (p ExercisePatch) Fields() repository.Fields {
	fields := repository.Fields{}
	if p.Name != nil {
		fields["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Muscles != nil {
		fields["muscles"] = *p.Muscles
	}
	if p.MusclesSecondary != nil {
		fields["musclesSecondary"] = *p.MusclesSecondary
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.Equipment != nil {
		fields["equipment"] = *p.Equipment
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Sets != nil {
		fields["sets"] = *p.Sets
	}
	if p.Repetitions != nil {
		fields["repetitions"] = *p.Repetitions
	}
	if p.Weight != nil {
		fields["weight"] = *p.Weight
	}
	if p.RestTime != nil {
		fields["restTime"] = *p.RestTime
	}
	if p.CatalogID != nil {
		fields["catalogId"] = *p.CatalogID
	}
	return fields
}

// VideoUpload is a presigned URL the client PUTs the exercise video to.
type VideoUpload struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExerciseService manages exercises and their demonstration videos.
type ExerciseService interface {
	ResourceService[domain.Exercise, ExerciseDraft, ExercisePatch]
	RequestVideoUpload(ctx context.Context, principal, id primitive.ObjectID, contentType string) (*VideoUpload, error)
	GetVideoURL(ctx context.Context, id primitive.ObjectID) (string, error)
}

type exerciseService struct {
	exercises ownedStore[domain.Exercise, *domain.Exercise]
	repo      repository.ExerciseRepository
	storage   storage.FileStorage // nil when no bucket is configured
	logger    *zap.Logger
}

// NewExerciseService creates an ExerciseService. fileStorage may be nil, in
// which case the video operations return ErrStorageUnavailable.
func NewExerciseService(repo repository.ExerciseRepository, fileStorage storage.FileStorage, logger *zap.Logger) ExerciseService {
	return &exerciseService{
		exercises: ownedStore[domain.Exercise, *domain.Exercise]{store: repo, kind: "exercise"},
		repo:      repo,
		storage:   fileStorage,
		logger:    logger,
	}
}

func (s *exerciseService) List(ctx context.Context, filter repository.Filter) ([]domain.Exercise, error) {
	return s.repo.Find(ctx, filter)
}

func (s *exerciseService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	return s.exercises.resolve(ctx, id)
}

func (s *exerciseService) Create(ctx context.Context, principal primitive.ObjectID, draft ExerciseDraft) (*domain.Exercise, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return s.exercises.create(ctx, draft.toExercise(principal))
}

func (s *exerciseService) Update(ctx context.Context, principal, id primitive.ObjectID, patch ExercisePatch) (*domain.Exercise, error) {
	return s.exercises.update(ctx, principal, id, func(*domain.Exercise) error { return patch.Validate() }, patch.Fields())
}

// Delete removes the exercise and, best effort, its uploaded video. Templates
// and sessions that reference it keep the dangling identifier.
func (s *exerciseService) Delete(ctx context.Context, principal, id primitive.ObjectID) error {
	deleted, err := s.exercises.delete(ctx, principal, id)
	if err != nil {
		return err
	}
	if deleted.VideoKey != "" && s.storage != nil {
		if err := s.storage.DeleteObject(ctx, deleted.VideoKey); err != nil {
			s.logger.Warn("failed to delete exercise video",
				zap.String("exerciseId", id.Hex()),
				zap.String("objectKey", deleted.VideoKey),
				zap.Error(err))
		}
	}
	return nil
}

func (s *exerciseService) RequestVideoUpload(ctx context.Context, principal, id primitive.ObjectID, contentType string) (*VideoUpload, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if !strings.HasPrefix(contentType, "video/") {
		return nil, invalid("contentType", "must be a video MIME type")
	}
	exercise, err := s.exercises.authorize(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	key := videoObjectKey(exercise, contentType)
	url, err := s.storage.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign video upload: %w", err)
	}
	if err := s.repo.Update(ctx, id, repository.Fields{"videoKey": key}); err != nil {
		return nil, s.exercises.translate(id, err)
	}
	return &VideoUpload{
		UploadURL: url,
		ObjectKey: key,
		ExpiresAt: time.Now().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

func (s *exerciseService) GetVideoURL(ctx context.Context, id primitive.ObjectID) (string, error) {
	if s.storage == nil {
		return "", ErrStorageUnavailable
	}
	exercise, err := s.exercises.resolve(ctx, id)
	if err != nil {
		return "", err
	}
	if exercise.VideoKey == "" {
		return "", fmt.Errorf("exercise %s has no video: %w", id.Hex(), ErrNotFound)
	}
	url, err := s.storage.GeneratePresignedDownloadURL(ctx, exercise.VideoKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign video download: %w", err)
	}
	return url, nil
}

// videoObjectKey builds exercises/{owner}/{exercise}/{uuid}.{ext}.
func videoObjectKey(exercise *domain.Exercise, contentType string) string {
	ext := strings.TrimPrefix(contentType, "video/")
	if i := strings.IndexAny(ext, ";+"); i >= 0 {
		ext = ext[:i]
	}
	if ext == "" {
		ext = "bin"
	}
	return path.Join("exercises", exercise.Owner.Hex(), exercise.ID.Hex(), uuid.NewString()+"."+ext)
}
