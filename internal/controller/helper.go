package controller

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sharetube/watch-together/internal/service/session"
)

const (
	msgSessionNotFound             = "Session not found"
	msgParticipantAlreadyInSession = "Participant already in session"
	msgNoParticipant               = "No participant provided"
	msgMissingFields               = "Missing fields"
	msgInternal                    = "Internal server error"
)

// errorMessage is the client-facing text for a service error.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return msgSessionNotFound
	case errors.Is(err, session.ErrParticipantAlreadyInSession):
		return msgParticipantAlreadyInSession
	case errors.Is(err, session.ErrNoParticipant):
		return msgNoParticipant
	default:
		return msgInternal
	}
}

func (c controller) logFromRequest(r *http.Request) *zerolog.Logger {
	return zerolog.Ctx(r.Context())
}
