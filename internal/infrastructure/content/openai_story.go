package content

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"

	"github.com/wordlab/study-api/internal/core/domain"
)

const storySystemPrompt = "You write short stories for vocabulary-learning research. Reply with the story text only."

// OpenAIStoryGenerator writes stories with the chat completions API.
type OpenAIStoryGenerator struct {
	model string
	opts  []option.RequestOption
	log   zerolog.Logger
}

func NewOpenAIStoryGenerator(cfg OpenAIConfig, log zerolog.Logger) (*OpenAIStoryGenerator, error) {
	opts, err := cfg.requestOptions()
	if err != nil {
		return nil, err
	}
	model := cfg.StoryModel
	if model == "" {
		model = defaultStoryModel
	}
	return &OpenAIStoryGenerator{model: model, opts: opts, log: log}, nil
}

// Generate asks the model for a story and rejects drafts that are too short or
// miss a marked target word. Vendor output is never patched.
func (g *OpenAIStoryGenerator) Generate(ctx context.Context, theme string, words []string, language string) (string, error) {
	if len(words) == 0 {
		return "", domain.ErrNoTargetWords
	}
	if language == "" {
		language = "en"
	}

	client := openai.NewClient(g.opts...)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(storySystemPrompt),
			openai.UserMessage(storyPrompt(theme, words, language)),
		},
	})
	if err != nil {
		g.log.Error().Err(err).Str("model", g.model).Msg("story request failed")
		return "", domain.NewGenerationError("failed to generate story")
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewGenerationError("failed to generate story: empty response")
	}

	story := strings.TrimSpace(resp.Choices[0].Message.Content)
	if !domain.ValidStory(story, words) {
		g.log.Warn().
			Int("length", len(story)).
			Strs("missing", domain.MissingWords(story, words)).
			Msg("story draft rejected")
		return "", domain.ErrStoryRequirements
	}
	return story, nil
}

func storyPrompt(theme string, words []string, language string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a short, engaging story in %s of about 150-200 words.\n", language)
	fmt.Fprintf(&sb, "Theme: %q.\n", theme)
	fmt.Fprintf(&sb, "Use each of these words naturally and exactly as written: %s.\n", strings.Join(words, ", "))
	fmt.Fprintf(&sb, "Wrap every one of them in double underscores, for example: He showed great %s.\n", domain.MarkWord("perseverance"))
	sb.WriteString("Do not add any other formatting.")
	return sb.String()
}
