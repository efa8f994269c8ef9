package controller

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/sharetube/watch-together/pkg/ctxlogger"
)

// requestIdMw attaches the controller logger to the request context and
// tags it with a fresh request id.
func (c controller) requestIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := c.logger.WithContext(r.Context())
		ctx = ctxlogger.AppendCtx(ctx, "request_id", uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.logFromRequest(r).Debug().
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Str("remote_addr", r.RemoteAddr).
			Msg("request")
		next.ServeHTTP(w, r)
	})
}
