package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/timeline-scheduler/internal/timeline"
)

func newTestNotifier() *LogNotifier {
	return NewLogNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLogNotifier_ScheduleReplacesPendingAlert(t *testing.T) {
	t.Parallel()

	n := newTestNotifier()
	ctx := context.Background()
	fireAt := time.Date(2025, time.June, 1, 15, 0, 0, 0, time.UTC)

	if err := n.Schedule(ctx, timeline.Notification{ID: "item-1", Title: "Dentist", FireAt: fireAt}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	later := fireAt.Add(time.Hour)
	if err := n.Schedule(ctx, timeline.Notification{ID: "item-1", Title: "Dentist", FireAt: later}); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	pending, ok := n.Pending("item-1")
	if !ok {
		t.Fatal("expected a pending alert")
	}
	if !pending.FireAt.Equal(later) {
		t.Fatalf("expected replacement alert at %v, got %v", later, pending.FireAt)
	}
}

func TestLogNotifier_CancelRemovesAlert(t *testing.T) {
	t.Parallel()

	n := newTestNotifier()
	ctx := context.Background()

	if err := n.Schedule(ctx, timeline.Notification{ID: "item-1", Title: "Dentist"}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := n.Cancel(ctx, "item-1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, ok := n.Pending("item-1"); ok {
		t.Fatal("expected alert removed")
	}
}

func TestLogNotifier_CancelUnknownIDIsNoOp(t *testing.T) {
	t.Parallel()

	n := newTestNotifier()
	if err := n.Cancel(context.Background(), "never-scheduled"); err != nil {
		t.Fatalf("expected no-op cancel, got %v", err)
	}
}
