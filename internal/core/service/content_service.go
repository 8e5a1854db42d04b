package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/wordlab/study-api/internal/core/domain"
	"github.com/wordlab/study-api/internal/core/ports"
	"github.com/wordlab/study-api/internal/pkg/metrics"
)

// DefaultStoryLanguage is used when the service is built without a language.
const DefaultStoryLanguage = "en"

// ContentService generates the story and narration for an experiment.
type ContentService struct {
	repo     ports.ExperimentRepository
	story    ports.StoryGenerator
	audio    ports.AudioGenerator
	language string
	log      zerolog.Logger
}

func NewContentService(
	repo ports.ExperimentRepository,
	story ports.StoryGenerator,
	audio ports.AudioGenerator,
	language string,
	log zerolog.Logger,
) *ContentService {
	if language == "" {
		language = DefaultStoryLanguage
	}
	return &ContentService{repo: repo, story: story, audio: audio, language: language, log: log}
}

// GenerateContent writes a fresh story and narration onto the experiment.
//
// Both generators run before anything is written, and the result is stored in
// a single update guarded by the version that was read. Any failure leaves the
// stored experiment untouched. Re-running overwrites previous content.
func (s *ContentService) GenerateContent(ctx context.Context, caller domain.Identity, id string) (*domain.Experiment, error) {
	start := time.Now()

	// 1. Load and authorise.
	exp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exp.OwnedBy(caller.UserID) {
		return nil, domain.ErrNotOwner
	}

	// 2. Nothing to teach, nothing to generate.
	words := exp.Words()
	if len(words) == 0 {
		metrics.ContentGenerationsTotal.WithLabelValues("no_target_words").Inc()
		return nil, domain.ErrNoTargetWords
	}

	// 3. Story. No retry: a bad draft surfaces immediately.
	stepStart := time.Now()
	story, err := s.story.Generate(ctx, exp.StoryTheme, words, s.language)
	metrics.ContentGenerationDuration.WithLabelValues("story").Observe(time.Since(stepStart).Seconds())
	if err != nil {
		metrics.ContentGenerationsTotal.WithLabelValues("story_failed").Inc()
		s.log.Error().Err(err).Str("experiment_id", id).Msg("story generation failed")
		return nil, err
	}

	// 4. Narration of the plain text. Absence degrades to an empty reference.
	stepStart = time.Now()
	audioURL, ok := s.audio.Generate(ctx, domain.StripMarkers(story), AudioFilename(exp.ID))
	metrics.ContentGenerationDuration.WithLabelValues("audio").Observe(time.Since(stepStart).Seconds())
	if !ok {
		audioURL = ""
		metrics.AudioDegradedTotal.Inc()
		s.log.Warn().Str("experiment_id", id).Msg("no narration produced, storing empty audio reference")
	}

	// 5. Single write.
	updated, err := s.repo.Update(ctx, id, exp.Version, ports.ExperimentUpdate{
		GeneratedStory: &story,
		AudioURL:       &audioURL,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			metrics.ContentGenerationsTotal.WithLabelValues("conflict").Inc()
		} else {
			metrics.ContentGenerationsTotal.WithLabelValues("store_failed").Inc()
		}
		return nil, err
	}

	metrics.ContentGenerationsTotal.WithLabelValues("success").Inc()
	metrics.ContentGenerationDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())
	s.log.Info().
		Str("experiment_id", id).
		Int("story_length", len(story)).
		Bool("audio", audioURL != "").
		Msg("content generated")

	return updated, nil
}

// AudioFilename is the deterministic narration file name for an experiment.
func AudioFilename(experimentID string) string {
	return "experiment_" + experimentID + "_full"
}
