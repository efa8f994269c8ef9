package controller

import (
	"encoding/json"

	"github.com/sharetube/watch-together/pkg/wsrouter"
)

const (
	inputTypeJoin   = "join"
	inputTypeAction = "action"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdMw(), c.wsSessionMw(), c.loggerWSMw())
	mux.OnError(c.handleWSError)

	wsrouter.Handle[joinInput](mux, inputTypeJoin, c.handleJoin)
	wsrouter.Handle[json.RawMessage](mux, inputTypeAction, c.handleAction)

	return mux
}
