package http

import (
	"context"
	"log/slog"

	"github.com/example/vacation-approval/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// handlerLogger scopes the request logger, or fallback outside a request, to
// one handler operation.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handler, operation string, attrs ...any) *slog.Logger {
	scoped := make([]any, 0, len(attrs)+4)
	scoped = append(scoped, "handler", handler, "operation", operation)
	_, logger := logging.With(ctx, fallback, append(scoped, attrs...)...)
	return logger
}
