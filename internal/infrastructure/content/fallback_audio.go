package content

import (
	"context"

	"github.com/rs/zerolog"
)

// FallbackAudioGenerator returns where narration would be served without
// producing any audio. The locator is expected to 404.
type FallbackAudioGenerator struct {
	publicURL string
	log       zerolog.Logger
}

func NewFallbackAudioGenerator(log zerolog.Logger) *FallbackAudioGenerator {
	return &FallbackAudioGenerator{publicURL: "/audio", log: log}
}

func (g *FallbackAudioGenerator) Generate(_ context.Context, text, filename string) (string, bool) {
	g.log.Debug().Str("filename", filename).Int("chars", len(text)).Msg("fallback narrator in use, no audio file created")
	return g.publicURL + "/" + filename + ".mp3", true
}
