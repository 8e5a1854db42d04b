// Package blob stores generated narration audio and reports the URL it is
// served from.
package blob

import (
	"context"
	"fmt"
	"strings"

	"github.com/wordlab/study-api/internal/core/ports"
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Config selects and configures a driver.
type Config struct {
	Driver string
	// Dir is the local driver's root directory.
	Dir string
	// PublicURL is the URL prefix objects are served under. For the local
	// driver this is the path the HTTP server mounts Dir on.
	PublicURL string
	S3        S3Config
}

// Open returns the store for cfg.Driver. An empty driver means local.
func Open(ctx context.Context, cfg Config) (ports.BlobStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverLocal:
		return NewLocalStore(cfg.Dir, cfg.PublicURL)
	case DriverS3:
		s3cfg := cfg.S3
		if s3cfg.PublicURL == "" {
			s3cfg.PublicURL = cfg.PublicURL
		}
		return NewS3Store(ctx, s3cfg)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

// sanitizeKey rejects keys that could escape the store root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return key, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
