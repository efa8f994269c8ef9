package session

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sharetube/watch-together/internal/domain"
	conninmemory "github.com/sharetube/watch-together/internal/repository/connection/inmemory"
	sessioninmemory "github.com/sharetube/watch-together/internal/repository/session/inmemory"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	name     string
	mu       sync.Mutex
	received []domain.Action
	full     bool
}

func newFakeConn(name string) *fakeConn {
	return &fakeConn{name: name}
}

func (c *fakeConn) Send(a domain.Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.full {
		return false
	}

	c.received = append(c.received, a)
	return true
}

func (c *fakeConn) Received() []domain.Action {
	c.mu.Lock()
	defer c.mu.Unlock()

	received := make([]domain.Action, len(c.received))
	copy(received, c.received)
	return received
}

func (c *fakeConn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.received = nil
}

type registry interface {
	iSessionRepo
	Len() int
}

func newTestService(t *testing.T) (*service, registry) {
	t.Helper()

	sessionRepo := sessioninmemory.NewRepo(zerolog.Nop())
	connRepo := conninmemory.NewRepo[Conn](zerolog.Nop())

	return New(sessionRepo, connRepo), sessionRepo
}

// join creates a client for conn and joins it, clearing what conn received
// while joining.
func join(t *testing.T, s *service, sessionID string, p domain.Participant, conn *fakeConn) *Client {
	t.Helper()

	c := s.NewClient(conn)
	require.NoError(t, c.Join(context.Background(), sessionID, &p))
	conn.Reset()

	return c
}
