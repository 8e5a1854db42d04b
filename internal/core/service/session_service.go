package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wordlab/study-api/internal/core/domain"
	"github.com/wordlab/study-api/internal/core/ports"
	"github.com/wordlab/study-api/internal/pkg/metrics"
)

// ExperimentResolver fetches the experiment content a session is built on.
type ExperimentResolver interface {
	GetPublic(ctx context.Context, caller domain.Identity, id string) (*domain.PublicExperiment, error)
}

type SessionService struct {
	sessions    ports.SessionRepository
	experiments ExperimentResolver
	log         zerolog.Logger
	now         func() time.Time
	idGen       func() string
}

func NewSessionService(sessions ports.SessionRepository, experiments ExperimentResolver, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessions:    sessions,
		experiments: experiments,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
		idGen:       uuid.NewString,
	}
}

// Start opens a stage flow at consent. The experiment must resolve first; if
// it does not, no session is created.
func (s *SessionService) Start(ctx context.Context, caller domain.Identity, experimentID string, condition domain.Condition) (*ports.StartedSession, error) {
	flow, err := domain.NewStageFlow(experimentID, condition)
	if err != nil {
		return nil, err
	}

	exp, err := s.experiments.GetPublic(ctx, caller, flow.ExperimentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &domain.StudySession{
		ID:            s.idGen(),
		ExperimentID:  flow.ExperimentID,
		ParticipantID: caller.UserID,
		Condition:     flow.Condition,
		Stage:         flow.Stage,
		StartedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	metrics.SessionsStartedTotal.WithLabelValues(string(sess.Condition)).Inc()
	s.log.Info().
		Str("session_id", sess.ID).
		Str("experiment_id", sess.ExperimentID).
		Str("condition", string(sess.Condition)).
		Msg("session started")

	return &ports.StartedSession{Session: sess, Experiment: exp}, nil
}

func (s *SessionService) Get(ctx context.Context, caller domain.Identity, sessionID string) (*domain.StudySession, error) {
	return s.loadOwn(ctx, caller, sessionID)
}

// Advance moves one stage forward. At complete it changes nothing.
func (s *SessionService) Advance(ctx context.Context, caller domain.Identity, sessionID string, consent bool) (*domain.StudySession, error) {
	sess, err := s.loadOwn(ctx, caller, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Stage.Terminal() {
		return sess, nil
	}

	now := s.now()
	if sess.Stage == domain.StageConsent {
		if !consent {
			return nil, domain.ErrConsentRequired
		}
		sess.ConsentedAt = &now
	}

	flow := sess.Flow()
	sess.Stage = flow.Advance()
	sess.UpdatedAt = now

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	metrics.StageTransitionsTotal.WithLabelValues(string(sess.Stage)).Inc()
	s.log.Debug().Str("session_id", sess.ID).Str("stage", string(sess.Stage)).Msg("stage advanced")
	return sess, nil
}

func (s *SessionService) loadOwn(ctx context.Context, caller domain.Identity, sessionID string) (*domain.StudySession, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.ParticipantID != caller.UserID {
		return nil, domain.ErrSessionForbidden
	}
	return sess, nil
}
