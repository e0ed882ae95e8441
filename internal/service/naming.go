package service

import (
	"context"
	"fmt"

	"fittrack/workout-api/internal/repository"
)

// WorkoutNamer derives the default name of a generated workout template.
type WorkoutNamer interface {
	NextWorkoutName(ctx context.Context) (string, error)
}

// TemplateCounter is the slice of the template store the namer needs.
type TemplateCounter interface {
	Count(ctx context.Context, filter repository.Filter) (int64, error)
}

// SequentialNamer names templates "Workout {n}" where n is the number of
// templates that exist when it is asked. The count is read, not reserved:
// concurrent callers can receive the same name. Names are not keys, so
// duplicates are allowed.
type SequentialNamer struct {
	templates TemplateCounter
}

// NewSequentialNamer creates a namer counting the given template store.
func NewSequentialNamer(templates TemplateCounter) *SequentialNamer {
	return &SequentialNamer{templates: templates}
}

func (n *SequentialNamer) NextWorkoutName(ctx context.Context) (string, error) {
	count, err := n.templates.Count(ctx, repository.Filter{})
	if err != nil {
		return "", fmt.Errorf("count workout templates: %w", err)
	}
	return fmt.Sprintf("Workout %d", count), nil
}
