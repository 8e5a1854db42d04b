package content

import (
	"context"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"

	"github.com/wordlab/study-api/internal/core/domain"
	"github.com/wordlab/study-api/internal/core/ports"
)

// OpenAISpeechGenerator narrates text with the speech API and stores the MP3
// in a blob store.
type OpenAISpeechGenerator struct {
	model string
	voice string
	opts  []option.RequestOption
	store ports.BlobStore
	log   zerolog.Logger
}

func NewOpenAISpeechGenerator(cfg OpenAIConfig, store ports.BlobStore, log zerolog.Logger) (*OpenAISpeechGenerator, error) {
	opts, err := cfg.requestOptions()
	if err != nil {
		return nil, err
	}
	model, voice := cfg.SpeechModel, cfg.Voice
	if model == "" {
		model = defaultSpeechModel
	}
	if voice == "" {
		voice = defaultVoice
	}
	return &OpenAISpeechGenerator{model: model, voice: voice, opts: opts, store: store, log: log}, nil
}

// Generate never fails. Vendor and storage errors are logged and reported as
// no narration.
func (g *OpenAISpeechGenerator) Generate(ctx context.Context, text, filename string) (string, bool) {
	text = domain.StripMarkers(text)
	if text == "" {
		return "", false
	}

	client := openai.NewClient(g.opts...)
	resp, err := client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input: text,
		Model: openai.SpeechModel(g.model),
		Voice: openai.AudioSpeechNewParamsVoice(g.voice),
	})
	if err != nil {
		g.log.Warn().Err(err).Str("filename", filename).Msg("speech request failed")
		return "", false
	}
	defer resp.Body.Close()

	url, err := g.store.Put(ctx, filename+".mp3", resp.Body, "audio/mpeg")
	if err != nil {
		g.log.Warn().Err(err).Str("filename", filename).Msg("failed to store narration")
		return "", false
	}
	return url, true
}
