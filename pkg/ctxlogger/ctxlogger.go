package ctxlogger

import (
	"context"

	"github.com/rs/zerolog"
)

// AppendCtx returns a copy of ctx whose logger also writes key=value.
func AppendCtx(ctx context.Context, key, value string) context.Context {
	logger := zerolog.Ctx(ctx).With().Str(key, value).Logger()
	return logger.WithContext(ctx)
}
