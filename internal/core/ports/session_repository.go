package ports

import (
	"context"

	"github.com/wordlab/study-api/internal/core/domain"
)

// SessionRepository keeps participant sessions for the length of one sitting.
type SessionRepository interface {
	Save(ctx context.Context, s *domain.StudySession) error
	// Get returns domain.ErrSessionNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (*domain.StudySession, error)
}
