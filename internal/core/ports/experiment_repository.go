package ports

import (
	"context"

	"github.com/wordlab/study-api/internal/core/domain"
)

// ExperimentFilter selects experiments for listing. Empty fields do not filter.
type ExperimentFilter struct {
	OwnerID    string
	ActiveOnly bool
}

// ExperimentUpdate is a partial set of fields to write. Nil fields are left
// untouched in the store.
type ExperimentUpdate struct {
	Title          *string
	Description    *string
	StoryTheme     *string
	TargetWords    *[]domain.TargetWord
	IsActive       *bool
	GeneratedStory *string
	AudioURL       *string
}

// ExperimentRepository defines persistence operations for experiments.
type ExperimentRepository interface {
	Create(ctx context.Context, e *domain.Experiment) (*domain.Experiment, error)
	FindByID(ctx context.Context, id string) (*domain.Experiment, error)
	// List returns matching experiments, newest first.
	List(ctx context.Context, filter ExperimentFilter) ([]*domain.Experiment, error)
	// Update applies u only if the stored version still equals version, bumps
	// the version and returns the refreshed entity. A version mismatch yields
	// domain.ErrConcurrentUpdate and writes nothing.
	Update(ctx context.Context, id string, version int64, u ExperimentUpdate) (*domain.Experiment, error)
	Delete(ctx context.Context, id string) error
}
