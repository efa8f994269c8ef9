package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sharetube/watch-together/internal/domain"
	"github.com/sharetube/watch-together/internal/service/session"
	"github.com/sharetube/watch-together/pkg/validator"
	"github.com/sharetube/watch-together/pkg/wsrouter"
)

type iSessionService interface {
	CreateSession(context.Context, *session.CreateSessionParams) (*domain.Session, error)
	GetSession(context.Context, string) (*domain.Session, error)
	NewClient(session.Conn) *session.Client
}

type Config struct {
	SendBuffer int
	ReadLimit  int64
	PingPeriod time.Duration
}

type controller struct {
	sessionService iSessionService
	upgrader       websocket.Upgrader
	validate       *validator.Validator
	wsmux          *wsrouter.WSRouter
	logger         zerolog.Logger
	config         Config
}

func NewController(sessionService iSessionService, logger zerolog.Logger, config *Config) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		sessionService: sessionService,
		validate:       validator.NewValidator(),
		logger:         logger.With().Str("component", "controller").Logger(),
		config:         *config,
	}
	c.wsmux = c.getWSRouter()

	return c
}
