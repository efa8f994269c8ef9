package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sharetube/watch-together/internal/domain"
	"github.com/sharetube/watch-together/internal/service/session"
	"github.com/sharetube/watch-together/pkg/ctxlogger"
)

var errJoinRejected = errors.New("join rejected")

func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logFromRequest(r).Warn().Err(err).Msg("failed to upgrade to websocket")
		return
	}

	ctx := ctxlogger.AppendCtx(r.Context(), "conn_id", uuid.NewString())
	logger := zerolog.Ctx(ctx)

	wc := newWSConn(conn, c.config.SendBuffer, *logger)
	go wc.writePump(c.config.PingPeriod)
	defer wc.close()

	pongWait := c.config.PingPeriod * 10 / 9
	conn.SetReadLimit(c.config.ReadLimit)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	client := c.sessionService.NewClient(wc)
	defer client.Disconnect(ctx)

	ctx = context.WithValue(ctx, clientCtxKey, client)
	ctx = context.WithValue(ctx, connCtxKey, wc)

	logger.Debug().Msg("connection opened")

	err = c.wsmux.ServeConn(ctx, conn)
	switch {
	case errors.Is(err, errJoinRejected):
		logger.Info().Err(err).Msg("connection closed")
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		logger.Debug().Msg("connection closed by peer")
	default:
		logger.Warn().Err(err).Msg("connection lost")
	}
}

type joinInput struct {
	SessionID   string              `json:"sessionId"`
	Participant *domain.Participant `json:"participant"`
}

func (c controller) handleJoin(ctx context.Context, input joinInput) error {
	client := c.getClientFromCtx(ctx)
	conn := c.getConnFromCtx(ctx)

	participant := input.Participant
	if participant != nil {
		if validationErrors, ok := c.validate.Validate(participant); !ok {
			zerolog.Ctx(ctx).Debug().Interface("errors", validationErrors).Msg("invalid participant")
			participant = nil
		}
	}

	err := client.Join(ctx, input.SessionID, participant)
	if err == nil {
		return nil
	}

	if errors.Is(err, session.ErrAlreadyJoined) {
		zerolog.Ctx(ctx).Warn().Str("session_id", input.SessionID).Msg("join on a joined connection ignored")
		return nil
	}

	zerolog.Ctx(ctx).Warn().Err(err).Str("session_id", input.SessionID).Msg("join rejected")
	conn.sendError(errorMessage(err))

	return fmt.Errorf("%w: %w", errJoinRejected, err)
}

func (c controller) handleAction(ctx context.Context, payload json.RawMessage) error {
	client := c.getClientFromCtx(ctx)

	action, err := domain.DecodeAction(payload)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("malformed action dropped")
		return nil
	}

	relayed, err := client.Handle(ctx, action)
	switch {
	case err == nil:
		zerolog.Ctx(ctx).Debug().Str("kind", string(relayed.Kind())).Msg("action relayed")
	case errors.Is(err, session.ErrNotJoined):
	case errors.Is(err, session.ErrUnknownCommand):
		zerolog.Ctx(ctx).Debug().Err(err).Msg("command not relayed")
	default:
		zerolog.Ctx(ctx).Warn().Err(err).Str("kind", string(action.Kind())).Msg("action dropped")
	}

	return nil
}

func (c controller) handleWSError(ctx context.Context, err error) {
	zerolog.Ctx(ctx).Warn().Err(err).Msg("frame dropped")
}
