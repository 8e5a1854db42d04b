package content

import (
	"github.com/rs/zerolog"

	"github.com/wordlab/study-api/internal/core/ports"
)

// Providers are the generators the pipeline is built with.
type Providers struct {
	Story ports.StoryGenerator
	Audio ports.AudioGenerator
	// Vendor is "openai" or "fallback".
	Vendor string
}

// NewProviders picks the generators once, at startup: vendor-backed when an
// API key is configured, the offline fallbacks otherwise.
func NewProviders(cfg OpenAIConfig, store ports.BlobStore, log zerolog.Logger) (Providers, error) {
	if cfg.APIKey == "" {
		log.Warn().Msg("no OpenAI API key configured, using fallback story and narration generators")
		return Providers{
			Story:  NewFallbackStoryGenerator(log),
			Audio:  NewFallbackAudioGenerator(log),
			Vendor: "fallback",
		}, nil
	}

	story, err := NewOpenAIStoryGenerator(cfg, log)
	if err != nil {
		return Providers{}, err
	}
	audio, err := NewOpenAISpeechGenerator(cfg, store, log)
	if err != nil {
		return Providers{}, err
	}
	log.Info().Str("story_model", story.model).Str("speech_model", audio.model).Msg("using OpenAI content generators")
	return Providers{Story: story, Audio: audio, Vendor: "openai"}, nil
}
