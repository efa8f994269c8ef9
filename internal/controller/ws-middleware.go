package controller

import (
	"context"
	"encoding/json"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sharetube/watch-together/internal/service/session"
	"github.com/sharetube/watch-together/pkg/ctxlogger"
	"github.com/sharetube/watch-together/pkg/wsrouter"
)

func (c controller) wsRequestIdMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[json.RawMessage]) wsrouter.HandlerFunc[json.RawMessage] {
		return func(ctx context.Context, payload json.RawMessage) error {
			ctx = ctxlogger.AppendCtx(ctx, "ws_request_id", uuid.NewString())
			return next(ctx, payload)
		}
	}
}

// wsSessionMw tags the logger with the session and participant once the
// connection has joined.
func (c controller) wsSessionMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[json.RawMessage]) wsrouter.HandlerFunc[json.RawMessage] {
		return func(ctx context.Context, payload json.RawMessage) error {
			client := c.getClientFromCtx(ctx)
			if client.State() == session.StateJoined {
				ctx = ctxlogger.AppendCtx(ctx, "session_id", client.SessionID())
				ctx = ctxlogger.AppendCtx(ctx, "participant_id", client.Participant().ID)
			}

			return next(ctx, payload)
		}
	}
}

func (c controller) loggerWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[json.RawMessage]) wsrouter.HandlerFunc[json.RawMessage] {
		return func(ctx context.Context, payload json.RawMessage) error {
			ctx = ctxlogger.AppendCtx(ctx, "message_type", wsrouter.GetMessageTypeFromCtx(ctx))
			zerolog.Ctx(ctx).Debug().Int("payload_size", len(payload)).Msg("websocket message received")

			start := time.Now()

			err := next(ctx, payload)

			zerolog.Ctx(ctx).Debug().
				Int64("processing_time_us", time.Since(start).Microseconds()).
				Int("goroutines", runtime.NumGoroutine()).
				Msg("websocket message handled")

			return err
		}
	}
}
