package session

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/sharetube/watch-together/internal/domain"
)

type State int

const (
	StateUnjoined State = iota
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnjoined:
		return "unjoined"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client binds one connection to a session and participant. Its methods are
// meant to be called from the connection's read loop only.
type Client struct {
	service     *service
	conn        Conn
	state       State
	sessionID   string
	participant domain.Participant
}

func (s *service) NewClient(conn Conn) *Client {
	return &Client{
		service: s,
		conn:    conn,
		state:   StateUnjoined,
	}
}

func (c *Client) State() State {
	return c.state
}

func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) Participant() domain.Participant {
	return c.participant
}

// Join moves an unjoined client into the session. Any failure other than
// ErrAlreadyJoined closes the client; the caller reports it and drops the
// connection.
func (c *Client) Join(ctx context.Context, sessionID string, participant *domain.Participant) error {
	switch c.state {
	case StateJoined:
		return ErrAlreadyJoined
	case StateClosed:
		return ErrClosed
	}

	if _, err := c.service.Join(ctx, &JoinParams{
		SessionID:   sessionID,
		Participant: participant,
		Conn:        c.conn,
	}); err != nil {
		c.state = StateClosed
		return err
	}

	c.state = StateJoined
	c.sessionID = sessionID
	c.participant = *participant

	return nil
}

// Handle relays an action from the connection. Before a successful join
// there is no session to apply it to and the action is dropped.
func (c *Client) Handle(ctx context.Context, action domain.Action) (domain.Action, error) {
	if c.state != StateJoined {
		zerolog.Ctx(ctx).Warn().
			Str("state", c.state.String()).
			Str("kind", string(action.Kind())).
			Msg("session not found, action dropped")
		return nil, ErrNotJoined
	}

	if action.Kind() == domain.KindRoomSync {
		return nil, ErrServerOnlyAction
	}

	return c.service.Dispatch(ctx, &DispatchParams{
		SessionID: c.sessionID,
		Action:    action,
		Conn:      c.conn,
	})
}

// Disconnect closes the client. A joined client leaves its session; calling
// it again or on an unjoined client does nothing more.
func (c *Client) Disconnect(ctx context.Context) {
	prev := c.state
	c.state = StateClosed
	if prev != StateJoined {
		return
	}

	if err := c.service.Leave(ctx, &LeaveParams{
		SessionID:   c.sessionID,
		Participant: c.participant,
		Conn:        c.conn,
	}); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("session_id", c.sessionID).Msg("failed to leave session")
	}
}
