package http

import (
	"context"
	"log/slog"

	"github.com/example/timeline-scheduler/internal/logging"
)

type contextKey string

const itemIDContextKey contextKey = "item_id"

// ContextWithItemID injects the item identifier resolved from the request path.
func ContextWithItemID(ctx context.Context, itemID string) context.Context {
	return context.WithValue(ctx, itemIDContextKey, itemID)
}

// ItemIDFromContext extracts an item identifier previously associated with the context.
func ItemIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(itemIDContextKey).(string)
	return id, ok
}

// LoggerFromContext exposes the request-scoped logger attached by middleware.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithLogger attaches a logger to the context for downstream handlers.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}
