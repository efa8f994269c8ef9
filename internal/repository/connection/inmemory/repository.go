package inmemory

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/sharetube/watch-together/internal/repository/connection"
)

// repo keeps the broadcast group of every session: which connections are
// subscribed to it, in subscription order.
type repo[C comparable] struct {
	groups    map[string][]C
	sessionOf map[C]string
	mu        sync.RWMutex
	logger    zerolog.Logger
}

func NewRepo[C comparable](logger zerolog.Logger) *repo[C] {
	return &repo[C]{
		groups:    make(map[string][]C),
		sessionOf: make(map[C]string),
		logger:    logger.With().Str("component", "connection.inmemory").Logger(),
	}
}

func (r *repo[C]) Add(sessionID string, conn C) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessionOf[conn]; ok {
		r.logger.Info().Str("session_id", sessionID).Err(connection.ErrAlreadyExists).Msg("Add")
		return connection.ErrAlreadyExists
	}

	r.sessionOf[conn] = sessionID
	r.groups[sessionID] = append(r.groups[sessionID], conn)

	r.logger.Debug().Str("session_id", sessionID).Int("group_size", len(r.groups[sessionID])).Msg("Add")
	return nil
}

// Remove unsubscribes conn and returns the session it was subscribed to.
func (r *repo[C]) Remove(conn C) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessionID, ok := r.sessionOf[conn]
	if !ok {
		r.logger.Debug().Err(connection.ErrNotFound).Msg("Remove")
		return "", connection.ErrNotFound
	}

	delete(r.sessionOf, conn)
	group := r.groups[sessionID]
	for index, existing := range group {
		if existing == conn {
			group = append(group[:index], group[index+1:]...)
			break
		}
	}
	if len(group) == 0 {
		delete(r.groups, sessionID)
	} else {
		r.groups[sessionID] = group
	}

	r.logger.Debug().Str("session_id", sessionID).Int("group_size", len(group)).Msg("Remove")
	return sessionID, nil
}

// GetConns returns a copy of the session's group; an unknown session has an
// empty group.
func (r *repo[C]) GetConns(sessionID string) []C {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group := r.groups[sessionID]
	conns := make([]C, len(group))
	copy(conns, group)

	return conns
}
