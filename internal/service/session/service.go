package session

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sharetube/watch-together/internal/domain"
)

var (
	ErrSessionNotFound             = errors.New("session not found")
	ErrParticipantAlreadyInSession = errors.New("participant already in session")
	ErrNoParticipant               = errors.New("no participant provided")
	ErrNoOwner                     = errors.New("owner id is empty")
	ErrUnknownCommand              = errors.New("unknown command")
	ErrAlreadyJoined               = errors.New("connection already joined a session")
	ErrNotJoined                   = errors.New("connection has not joined a session")
	ErrClosed                      = errors.New("connection is closed")
	ErrServerOnlyAction            = errors.New("action kind is server to client only")
)

// Conn is one realtime connection as seen by the relay.
type Conn interface {
	// Send queues a for delivery without waiting and reports whether it was
	// queued.
	Send(a domain.Action) bool
}

type iSessionRepo interface {
	Set(*domain.Session) error
	Get(string) (*domain.Session, error)
}

type iConnRepo interface {
	Add(string, Conn) error
	Remove(Conn) (string, error)
	GetConns(string) []Conn
}

type service struct {
	sessionRepo iSessionRepo
	connRepo    iConnRepo
	locks       *locker
	generateID  func() string
}

func New(sessionRepo iSessionRepo, connRepo iConnRepo) *service {
	return &service{
		sessionRepo: sessionRepo,
		connRepo:    connRepo,
		locks:       newLocker(),
		generateID:  uuid.NewString,
	}
}
