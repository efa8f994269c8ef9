package session

import "github.com/sharetube/watch-together/internal/domain"

type CreateSessionParams struct {
	OwnerID string
}

type JoinParams struct {
	SessionID   string
	Participant *domain.Participant
	Conn        Conn
}

type DispatchParams struct {
	SessionID string
	Action    domain.Action
	Conn      Conn
}

type LeaveParams struct {
	SessionID   string
	Participant domain.Participant
	Conn        Conn
}
