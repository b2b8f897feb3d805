package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/timeline-scheduler/internal/timeline"
)

var (
	errBadRequestBody      = errors.New("request body is not valid JSON")
	errInvalidItemID       = errors.New("item id is missing or invalid")
	errInvalidDate         = errors.New("date must use the YYYY-MM-DD format")
	errInvalidDeferMinutes = errors.New("defer minutes must be a positive integer")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleEngineError translates engine sentinels into response statuses. The
// engine itself never propagates failures to its UI-equivalent callers beyond
// a log line; the transport layer is where the typed outcome becomes visible.
func (r responder) handleEngineError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	kind := timeline.ErrorKind(err)
	switch {
	case errors.Is(err, timeline.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{ErrorCode: kind, Message: "the requested item does not exist"})
	case errors.Is(err, timeline.ErrDuplicateTitle):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: kind, Message: "a template with this title already exists"})
	case errors.Is(err, timeline.ErrWrongRole):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{ErrorCode: kind, Message: "the item's role does not match this operation"})
	case errors.Is(err, timeline.ErrNotMaterialized):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{ErrorCode: kind, Message: "the occurrence must be materialized before it can be modified"})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected engine error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
}
