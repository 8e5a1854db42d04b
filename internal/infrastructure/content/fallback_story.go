package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wordlab/study-api/internal/core/domain"
)

// templateWords fill the story slots when fewer target words are supplied.
var templateWords = [...]string{"learning", "cognitive", "research", "memory", "generation"}

// FallbackStoryGenerator writes a fixed-template story without calling any
// vendor. Its output always satisfies the story requirements, so the rest of
// the pipeline can run offline.
type FallbackStoryGenerator struct {
	log zerolog.Logger
}

func NewFallbackStoryGenerator(log zerolog.Logger) *FallbackStoryGenerator {
	return &FallbackStoryGenerator{log: log}
}

func (g *FallbackStoryGenerator) Generate(_ context.Context, theme string, words []string, _ string) (string, error) {
	if len(words) == 0 {
		return "", domain.ErrNoTargetWords
	}
	g.log.Debug().Int("words", len(words)).Msg("fallback story generator in use, no vendor call made")

	slot := func(i int) string {
		if i < len(words) {
			return domain.MarkWord(words[i])
		}
		return domain.MarkWord(templateWords[i])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "This is a short practice story about %s. ", strings.TrimSpace(theme))
	fmt.Fprintf(&sb, "Every student relies on %s to make sense of %s ideas. ", slot(0), slot(1))
	fmt.Fprintf(&sb, "Careful %s takes patience. ", slot(2))
	fmt.Fprintf(&sb, "Afterwards, the %s of that afternoon stayed sharp. ", slot(3))
	fmt.Fprintf(&sb, "It was a fine example of the %s effect.", slot(4))

	story := sb.String()
	for _, w := range domain.MissingWords(story, words) {
		story += " The word " + domain.MarkWord(w) + " was also included."
	}
	return story, nil
}
