package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/example/timeline-scheduler/internal/logging"
	"github.com/example/timeline-scheduler/internal/timeline"
)

// LogNotifier is a notification collaborator that records pending alerts in
// memory and reports scheduling activity through the logger. It stands in for
// a platform delivery mechanism; the engine's contract is fire-and-forget
// either way.
type LogNotifier struct {
	mu      sync.Mutex
	logger  *slog.Logger
	pending map[string]timeline.Notification
}

// NewLogNotifier constructs a notifier that logs through the provided logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{
		logger:  logger,
		pending: make(map[string]timeline.Notification),
	}
}

// Schedule records a one-shot alert keyed by the item id, replacing any alert
// already pending under that key.
func (n *LogNotifier) Schedule(ctx context.Context, notification timeline.Notification) error {
	n.mu.Lock()
	n.pending[notification.ID] = notification
	n.mu.Unlock()

	n.loggerFor(ctx).InfoContext(ctx, "alert scheduled",
		"item_id", notification.ID,
		"title", notification.Title,
		"fire_at", notification.FireAt,
	)
	return nil
}

// Cancel removes a pending alert. Cancelling an unknown id is a no-op; the
// engine cancels speculatively before every reschedule.
func (n *LogNotifier) Cancel(ctx context.Context, id string) error {
	n.mu.Lock()
	_, existed := n.pending[id]
	delete(n.pending, id)
	n.mu.Unlock()

	if existed {
		n.loggerFor(ctx).InfoContext(ctx, "alert cancelled", "item_id", id)
	}
	return nil
}

// Pending returns the alert currently scheduled for the id, if any.
func (n *LogNotifier) Pending(id string) (timeline.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	notification, ok := n.pending[id]
	return notification, ok
}

func (n *LogNotifier) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return n.logger
}
