package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownType    = errors.New("unknown message type")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrInvalidFrame   = errors.New("invalid frame")
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Reader is the read side of a websocket connection.
type Reader interface {
	ReadMessage() (messageType int, p []byte, err error)
}

// HandlerFunc handles one decoded frame. A returned error stops ServeConn.
type HandlerFunc[T any] func(ctx context.Context, input T) error

type Middleware func(next HandlerFunc[json.RawMessage]) HandlerFunc[json.RawMessage]

// ErrorFunc receives errors that do not end the connection: undecodable
// frames, unknown types and payloads that do not fit the handler's input.
type ErrorFunc func(ctx context.Context, err error)

type WSRouter struct {
	routes      map[string]HandlerFunc[json.RawMessage]
	middlewares []Middleware
	onError     ErrorFunc
}

func New() *WSRouter {
	return &WSRouter{
		routes:  make(map[string]HandlerFunc[json.RawMessage]),
		onError: func(context.Context, error) {},
	}
}

// Handle registers handler for messageType; the payload is decoded into T
// before the handler runs.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	r.routes[messageType] = func(ctx context.Context, payload json.RawMessage) error {
		var input T
		if err := json.Unmarshal(payload, &input); err != nil {
			r.onError(ctx, fmt.Errorf("%w: %w", ErrInvalidPayload, err))
			return nil
		}

		return handler(ctx, input)
	}
}

func (r *WSRouter) Use(middlewares ...Middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
}

func (r *WSRouter) OnError(f ErrorFunc) {
	r.onError = f
}

// ServeConn reads frames until the connection fails or a handler returns an
// error, and returns that error. A frame that does not decode is reported to
// the error hook and skipped.
func (r *WSRouter) ServeConn(ctx context.Context, conn Reader) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			r.onError(ctx, fmt.Errorf("%w: %w", ErrInvalidFrame, err))
			continue
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)

		handler, exists := r.routes[msg.Type]
		if !exists {
			r.onError(msgCtx, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type))
			continue
		}

		for i := len(r.middlewares) - 1; i >= 0; i-- {
			handler = r.middlewares[i](handler)
		}

		if err := handler(msgCtx, msg.Payload); err != nil {
			return err
		}
	}
}
