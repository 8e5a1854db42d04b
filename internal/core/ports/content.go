package ports

import (
	"context"
	"io"
)

// StoryGenerator turns a theme and target words into a story that marks each
// word as __word__. Implementations fail with a generation error rather than
// return a story that misses a word or is too short.
type StoryGenerator interface {
	Generate(ctx context.Context, theme string, words []string, language string) (string, error)
}

// AudioGenerator narrates text and returns a locator for the audio. It never
// fails: ok is false when no narration could be produced. A returned locator
// is not guaranteed to resolve.
type AudioGenerator interface {
	Generate(ctx context.Context, text, filename string) (locator string, ok bool)
}

// BlobStore persists generated media and returns the URL it is served from.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}
