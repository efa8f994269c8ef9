package inmemory

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/sharetube/watch-together/internal/domain"
	"github.com/sharetube/watch-together/internal/repository/session"
)

// repo is the process-lifetime session registry. Sessions are never removed.
type repo struct {
	sessions map[string]*domain.Session
	mu       sync.RWMutex
	logger   zerolog.Logger
}

func NewRepo(logger zerolog.Logger) *repo {
	return &repo{
		sessions: make(map[string]*domain.Session),
		logger:   logger.With().Str("component", "session.inmemory").Logger(),
	}
}

func (r *repo) Set(s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID()]; ok {
		r.logger.Info().Str("session_id", s.ID()).Err(session.ErrAlreadyExists).Msg("Set")
		return session.ErrAlreadyExists
	}

	r.sessions[s.ID()] = s

	r.logger.Debug().Str("session_id", s.ID()).Int("sessions", len(r.sessions)).Msg("Set")
	return nil
}

func (r *repo) Get(id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}

	return s, nil
}

func (r *repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
