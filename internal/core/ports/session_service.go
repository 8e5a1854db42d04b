package ports

import (
	"context"

	"github.com/wordlab/study-api/internal/core/domain"
)

// StartedSession is a new session together with the experiment content the
// participant needs for every stage.
type StartedSession struct {
	Session    *domain.StudySession
	Experiment *domain.PublicExperiment
}

// SessionService drives the participant stage flow.
type SessionService interface {
	Start(ctx context.Context, caller domain.Identity, experimentID string, condition domain.Condition) (*StartedSession, error)
	Get(ctx context.Context, caller domain.Identity, sessionID string) (*domain.StudySession, error)
	// Advance moves the session one stage forward. Leaving the consent stage
	// requires consent to be true.
	Advance(ctx context.Context, caller domain.Identity, sessionID string, consent bool) (*domain.StudySession, error)
}
