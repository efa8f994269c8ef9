package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/sharetube/watch-together/internal/domain"
	"github.com/sharetube/watch-together/internal/repository/connection"
)

// Join adds params.Participant to the session, announces it to the other
// subscribers, sends the joiner a room-sync snapshot and subscribes the
// joiner's connection.
func (s *service) Join(ctx context.Context, params *JoinParams) (*domain.Session, error) {
	sess, err := s.getSession(params.SessionID)
	if err != nil {
		return nil, err
	}

	if params.Participant == nil || params.Participant.ID == "" {
		return nil, ErrNoParticipant
	}
	participant := *params.Participant

	unlock := s.locks.lock(sess.ID())
	defer unlock()

	if sess.HasParticipant(participant.ID) {
		return nil, ErrParticipantAlreadyInSession
	}

	if _, err := s.dispatch(ctx, params.Conn, sess, domain.AddParticipant{Participant: participant}); err != nil {
		return nil, fmt.Errorf("failed to dispatch add participant: %w", err)
	}

	snapshot := sess.Clone()
	if !params.Conn.Send(domain.RoomSync{Session: snapshot}) {
		zerolog.Ctx(ctx).Warn().Msg("room sync was not queued")
	}

	if err := s.connRepo.Add(sess.ID(), params.Conn); err != nil {
		return nil, fmt.Errorf("failed to subscribe connection: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("session_id", sess.ID()).
		Str("participant_id", participant.ID).
		Msg("participant joined")

	return snapshot, nil
}

// Dispatch applies params.Action to the session and relays the result to
// every other subscriber. It returns the action that was relayed.
func (s *service) Dispatch(ctx context.Context, params *DispatchParams) (domain.Action, error) {
	sess, err := s.getSession(params.SessionID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().
			Str("session_id", params.SessionID).
			Str("kind", string(params.Action.Kind())).
			Msg("session not found, action dropped")
		return nil, err
	}

	unlock := s.locks.lock(sess.ID())
	defer unlock()

	return s.dispatch(ctx, params.Conn, sess, params.Action)
}

// Leave unsubscribes the connection and removes its participant. When the
// owner leaves, playback is paused with every other video field kept.
func (s *service) Leave(ctx context.Context, params *LeaveParams) error {
	sess, err := s.getSession(params.SessionID)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(sess.ID())
	defer unlock()

	if _, err := s.connRepo.Remove(params.Conn); err != nil && !errors.Is(err, connection.ErrNotFound) {
		return fmt.Errorf("failed to unsubscribe connection: %w", err)
	}

	if _, err := s.dispatch(ctx, params.Conn, sess, domain.RemoveParticipant{Participant: params.Participant}); err != nil {
		return fmt.Errorf("failed to dispatch remove participant: %w", err)
	}

	if sess.IsOwner(params.Participant.ID) {
		video, _ := sess.Video()
		video.Paused = lo.ToPtr(true)
		if _, err := s.dispatch(ctx, params.Conn, sess, domain.SetVideo{Video: video}); err != nil {
			return fmt.Errorf("failed to dispatch owner pause: %w", err)
		}
	}

	zerolog.Ctx(ctx).Info().
		Str("session_id", sess.ID()).
		Str("participant_id", params.Participant.ID).
		Bool("owner", sess.IsOwner(params.Participant.ID)).
		Msg("participant left")

	return nil
}

// dispatch must be called with the session lock held.
func (s *service) dispatch(ctx context.Context, origin Conn, sess *domain.Session, action domain.Action) (domain.Action, error) {
	logger := zerolog.Ctx(ctx)

	sess.Apply(action)

	out, err := Rewrite(action)
	if err != nil {
		logger.Warn().Err(err).Str("session_id", sess.ID()).Msg("command dropped")
		return nil, err
	}
	if _, ok := action.(domain.Command); ok {
		sess.Apply(out)
	}

	s.broadcast(ctx, origin, sess.ID(), out)

	logger.Debug().
		Str("session_id", sess.ID()).
		Str("kind", string(action.Kind())).
		Str("relayed_kind", string(out.Kind())).
		Msg("action dispatched")

	return out, nil
}

func (s *service) broadcast(ctx context.Context, origin Conn, sessionID string, a domain.Action) {
	receivers := lo.Filter(s.connRepo.GetConns(sessionID), func(c Conn, _ int) bool {
		return c != origin
	})

	for _, c := range receivers {
		if !c.Send(a) {
			zerolog.Ctx(ctx).Warn().
				Str("session_id", sessionID).
				Str("kind", string(a.Kind())).
				Msg("send queue full, action dropped for receiver")
		}
	}
}
