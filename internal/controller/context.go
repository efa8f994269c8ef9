package controller

import (
	"context"

	"github.com/sharetube/watch-together/internal/service/session"
)

type contextKey int

const (
	clientCtxKey contextKey = iota
	connCtxKey
)

func (c controller) getClientFromCtx(ctx context.Context) *session.Client {
	return ctx.Value(clientCtxKey).(*session.Client)
}

func (c controller) getConnFromCtx(ctx context.Context) *wsConn {
	return ctx.Value(connCtxKey).(*wsConn)
}
