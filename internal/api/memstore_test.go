package api

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/wordlab/study-api/internal/core/domain"
	"github.com/wordlab/study-api/internal/core/ports"
)

// In-memory stores that behave like the Mongo and Redis adapters.

type memUsers struct {
	mu    sync.Mutex
	users []*domain.User
}

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	clone := *u
	clone.ID = "user-" + strconv.Itoa(len(m.users)+1)
	m.users = append(m.users, &clone)
	out := clone
	return &out, nil
}

func (m *memUsers) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == login || u.Email == login {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) Exists(_ context.Context, username, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type memExperiments struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*domain.Experiment
}

func newMemExperiments() *memExperiments {
	return &memExperiments{byID: make(map[string]*domain.Experiment)}
}

func copyExperiment(e *domain.Experiment) *domain.Experiment {
	out := *e
	out.TargetWords = append([]domain.TargetWord{}, e.TargetWords...)
	return &out
}

func (m *memExperiments) Create(_ context.Context, e *domain.Experiment) (*domain.Experiment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	clone := copyExperiment(e)
	clone.ID = "exp-" + strconv.Itoa(m.seq)
	m.byID[clone.ID] = clone
	return copyExperiment(clone), nil
}

func (m *memExperiments) FindByID(_ context.Context, id string) (*domain.Experiment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrExperimentNotFound
	}
	return copyExperiment(e), nil
}

func (m *memExperiments) List(_ context.Context, f ports.ExperimentFilter) ([]*domain.Experiment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Experiment, 0)
	for _, e := range m.byID {
		if f.OwnerID != "" && e.OwnerID != f.OwnerID {
			continue
		}
		if f.ActiveOnly && !e.IsActive {
			continue
		}
		out = append(out, copyExperiment(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memExperiments) Update(_ context.Context, id string, version int64, u ports.ExperimentUpdate) (*domain.Experiment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrExperimentNotFound
	}
	if e.Version != version {
		return nil, domain.ErrConcurrentUpdate
	}
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.StoryTheme != nil {
		e.StoryTheme = *u.StoryTheme
	}
	if u.TargetWords != nil {
		e.TargetWords = append([]domain.TargetWord{}, (*u.TargetWords)...)
	}
	if u.IsActive != nil {
		e.IsActive = *u.IsActive
	}
	if u.GeneratedStory != nil {
		e.GeneratedStory = *u.GeneratedStory
	}
	if u.AudioURL != nil {
		e.AudioURL = *u.AudioURL
	}
	e.Version++
	return copyExperiment(e), nil
}

func (m *memExperiments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrExperimentNotFound
	}
	delete(m.byID, id)
	return nil
}

type memSessions struct {
	mu   sync.Mutex
	byID map[string]domain.StudySession
}

func (m *memSessions) Save(_ context.Context, s *domain.StudySession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byID == nil {
		m.byID = make(map[string]domain.StudySession)
	}
	m.byID[s.ID] = *s
	return nil
}

func (m *memSessions) Get(_ context.Context, id string) (*domain.StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}
