package controller

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sharetube/watch-together/internal/domain"
)

const (
	writeWait = 10 * time.Second

	outputTypeAction = "action"
	outputTypeError  = "error"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// wsConn owns the write side of one websocket. Frames are queued by Send and
// written by writePump, the only goroutine that writes data frames.
type wsConn struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger zerolog.Logger
}

func newWSConn(conn *websocket.Conn, sendBuffer int, logger zerolog.Logger) *wsConn {
	return &wsConn{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (c *wsConn) Send(a domain.Action) bool {
	return c.enqueue(&Output{Type: outputTypeAction, Payload: a})
}

func (c *wsConn) sendError(message string) bool {
	return c.enqueue(&Output{Type: outputTypeError, Payload: errorPayload{Message: message}})
}

func (c *wsConn) enqueue(out *Output) bool {
	data, err := json.Marshal(out)
	if err != nil {
		c.logger.Error().Err(err).Str("type", out.Type).Msg("failed to marshal output")
		return false
	}

	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close stops the writer; frames already queued are flushed before the close
// frame.
func (c *wsConn) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *wsConn) writePump(pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				c.logger.Error().Err(err).Msg("failed to write message")
				c.close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("failed to write ping")
				c.close()
				return
			}
		case <-c.done:
			c.flush()
			c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *wsConn) flush() {
	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *wsConn) write(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}
