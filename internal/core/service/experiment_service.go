package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wordlab/study-api/internal/core/domain"
	"github.com/wordlab/study-api/internal/core/ports"
	"github.com/wordlab/study-api/internal/pkg/metrics"
)

type ExperimentService struct {
	repo   ports.ExperimentRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewExperimentService(repo ports.ExperimentRepository, logger zerolog.Logger) *ExperimentService {
	return &ExperimentService{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Create stores a new, inactive experiment with no generated content.
func (s *ExperimentService) Create(ctx context.Context, caller domain.Identity, in ports.CreateExperimentInput) (*domain.Experiment, error) {
	title := strings.TrimSpace(in.Title)
	theme := strings.TrimSpace(in.StoryTheme)
	if title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if theme == "" {
		return nil, domain.NewValidationError("story theme is required")
	}
	words := normalizeWords(in.TargetWords)
	if err := domain.ValidateTargetWords(words); err != nil {
		return nil, err
	}

	now := s.now()
	exp := &domain.Experiment{
		OwnerID:     caller.UserID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		StoryTheme:  theme,
		TargetWords: words,
		IsActive:    false,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, exp)
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", caller.UserID).Msg("failed to create experiment")
		return nil, err
	}

	metrics.ExperimentsCreatedTotal.Inc()
	s.logger.Info().Str("experiment_id", created.ID).Str("owner_id", caller.UserID).Int("target_words", len(words)).Msg("experiment created")
	return created, nil
}

// ListOwned returns the caller's own experiments.
func (s *ExperimentService) ListOwned(ctx context.Context, caller domain.Identity) ([]*domain.Experiment, error) {
	return s.repo.List(ctx, ports.ExperimentFilter{OwnerID: caller.UserID})
}

// ListAvailable returns active experiments as participant-safe projections.
func (s *ExperimentService) ListAvailable(ctx context.Context, _ domain.Identity) ([]domain.PublicExperiment, error) {
	exps, err := s.repo.List(ctx, ports.ExperimentFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicExperiment, 0, len(exps))
	for _, e := range exps {
		out = append(out, e.Public())
	}
	return out, nil
}

// GetPublic returns the projection for any authenticated caller, whether or
// not the experiment is active, so researchers can dry-run the flow.
func (s *ExperimentService) GetPublic(ctx context.Context, _ domain.Identity, id string) (*domain.PublicExperiment, error) {
	exp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := exp.Public()
	return &p, nil
}

// Update applies a teacher's partial edit. Editing the theme or the target
// words drops generated content, which was produced for the old values.
func (s *ExperimentService) Update(ctx context.Context, caller domain.Identity, id string, in ports.UpdateExperimentInput) (*domain.Experiment, error) {
	exp, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	var u ports.ExperimentUpdate
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domain.NewValidationError("title cannot be empty")
		}
		u.Title = &title
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		u.Description = &desc
	}
	if in.IsActive != nil {
		active := *in.IsActive
		u.IsActive = &active
	}

	contentStale := false
	if in.StoryTheme != nil {
		theme := strings.TrimSpace(*in.StoryTheme)
		if theme == "" {
			return nil, domain.NewValidationError("story theme cannot be empty")
		}
		u.StoryTheme = &theme
		contentStale = contentStale || theme != exp.StoryTheme
	}
	if in.TargetWords != nil {
		words := normalizeWords(*in.TargetWords)
		if err := domain.ValidateTargetWords(words); err != nil {
			return nil, err
		}
		u.TargetWords = &words
		contentStale = contentStale || !sameWords(words, exp.TargetWords)
	}
	if contentStale && (exp.GeneratedStory != "" || exp.AudioURL != "") {
		empty := ""
		u.GeneratedStory = &empty
		u.AudioURL = &empty
	}

	updated, err := s.repo.Update(ctx, id, exp.Version, u)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("experiment_id", id).Bool("content_cleared", u.GeneratedStory != nil).Msg("experiment updated")
	return updated, nil
}

// Delete hard-deletes an experiment owned by the caller.
func (s *ExperimentService) Delete(ctx context.Context, caller domain.Identity, id string) error {
	if _, err := s.loadOwned(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("experiment_id", id).Str("owner_id", caller.UserID).Msg("experiment deleted")
	return nil
}

// loadOwned fetches an experiment and checks the caller created it.
func (s *ExperimentService) loadOwned(ctx context.Context, caller domain.Identity, id string) (*domain.Experiment, error) {
	exp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exp.OwnedBy(caller.UserID) {
		return nil, domain.ErrNotOwner
	}
	return exp, nil
}

func normalizeWords(in []domain.TargetWord) []domain.TargetWord {
	out := make([]domain.TargetWord, 0, len(in))
	for _, tw := range in {
		out = append(out, domain.TargetWord{
			Word:       strings.TrimSpace(tw.Word),
			Definition: strings.TrimSpace(tw.Definition),
		})
	}
	return out
}

func sameWords(a, b []domain.TargetWord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
