package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/watch-together/internal/service/session"
	"github.com/sharetube/watch-together/pkg/rest"
)

type createSessionInput struct {
	OwnerID string `json:"ownerId" validate:"required"`
}

func (c controller) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionInput

	if err := rest.ReadJSON(r, &req); err != nil {
		c.logFromRequest(r).Info().Err(err).Msg("createSession: read json")
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"success": false, "error": msgMissingFields})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		c.logFromRequest(r).Info().Interface("errors", validationErrors).Msg("createSession: validate")
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"success": false, "error": msgMissingFields})
		return
	}

	sess, err := c.sessionService.CreateSession(r.Context(), &session.CreateSessionParams{
		OwnerID: req.OwnerID,
	})
	if err != nil {
		c.logFromRequest(r).Error().Err(err).Msg("createSession: create session")
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"success": false, "error": msgInternal})
		return
	}

	rest.WriteJSON(w, http.StatusOK, sess)
}

func (c controller) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session-id")

	sess, err := c.sessionService.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			c.logFromRequest(r).Debug().Str("session_id", sessionID).Msg("getSession: not found")
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"success": false, "error": msgSessionNotFound})
			return
		}

		c.logFromRequest(r).Error().Err(err).Msg("getSession: get session")
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"success": false, "error": msgInternal})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "session": sess})
}
