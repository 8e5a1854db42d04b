package content

import (
	"errors"

	"github.com/openai/openai-go/option"
)

// OpenAIConfig holds the vendor settings shared by the story and speech
// generators.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	StoryModel  string
	SpeechModel string
	Voice       string
}

const (
	defaultStoryModel  = "gpt-4o-mini"
	defaultSpeechModel = "tts-1"
	defaultVoice       = "alloy"
)

// requestOptions builds client options. Retries are disabled: a failed call
// surfaces to the caller immediately.
func (c OpenAIConfig) requestOptions() ([]option.RequestOption, error) {
	if c.APIKey == "" {
		return nil, errors.New("openai api key missing")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(c.APIKey),
		option.WithMaxRetries(0),
	}
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}
	return opts, nil
}
