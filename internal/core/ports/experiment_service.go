package ports

import (
	"context"

	"github.com/wordlab/study-api/internal/core/domain"
)

// CreateExperimentInput carries what a teacher provides for a new experiment.
type CreateExperimentInput struct {
	Title       string
	Description string
	StoryTheme  string
	TargetWords []domain.TargetWord
}

// UpdateExperimentInput is a teacher's partial edit. Nil fields are kept.
type UpdateExperimentInput struct {
	Title       *string
	Description *string
	StoryTheme  *string
	TargetWords *[]domain.TargetWord
	IsActive    *bool
}

// ExperimentService defines use-case operations for experiments.
type ExperimentService interface {
	Create(ctx context.Context, caller domain.Identity, input CreateExperimentInput) (*domain.Experiment, error)
	ListOwned(ctx context.Context, caller domain.Identity) ([]*domain.Experiment, error)
	ListAvailable(ctx context.Context, caller domain.Identity) ([]domain.PublicExperiment, error)
	GetPublic(ctx context.Context, caller domain.Identity, id string) (*domain.PublicExperiment, error)
	Update(ctx context.Context, caller domain.Identity, id string, input UpdateExperimentInput) (*domain.Experiment, error)
	Delete(ctx context.Context, caller domain.Identity, id string) error
}

// ContentService runs the story and narration pipeline for one experiment.
type ContentService interface {
	GenerateContent(ctx context.Context, caller domain.Identity, id string) (*domain.Experiment, error)
}
