package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sharetube/watch-together/internal/domain"
	repo "github.com/sharetube/watch-together/internal/repository/session"
)

// CreateSession registers a new empty session owned by params.OwnerID and
// returns a snapshot of it.
func (s *service) CreateSession(ctx context.Context, params *CreateSessionParams) (*domain.Session, error) {
	if params.OwnerID == "" {
		return nil, ErrNoOwner
	}

	sess := domain.NewSession(s.generateID(), params.OwnerID)
	if err := s.sessionRepo.Set(sess); err != nil {
		return nil, fmt.Errorf("failed to set session: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("session_id", sess.ID()).
		Str("owner_id", sess.OwnerID()).
		Msg("session created")

	return sess.Clone(), nil
}

// GetSession returns a snapshot of the session or ErrSessionNotFound.
func (s *service) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	return sess.Clone(), nil
}

func (s *service) getSession(sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(sessionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSessionNotFound
		}

		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return sess, nil
}
