package testfixtures

import (
	"context"
	"sync"

	"github.com/example/timeline-scheduler/internal/timeline"
)

// NotifierSpy records notification calls issued by the engine so tests can
// assert on scheduling and cancellation behavior.
type NotifierSpy struct {
	mu          sync.Mutex
	scheduled   []timeline.Notification
	cancelled   []string
	ScheduleErr error
	CancelErr   error
}

// NewNotifierSpy returns an empty spy.
func NewNotifierSpy() *NotifierSpy {
	return &NotifierSpy{}
}

// Schedule records the notification.
func (n *NotifierSpy) Schedule(_ context.Context, notification timeline.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ScheduleErr != nil {
		return n.ScheduleErr
	}
	n.scheduled = append(n.scheduled, notification)
	return nil
}

// Cancel records the cancellation.
func (n *NotifierSpy) Cancel(_ context.Context, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.CancelErr != nil {
		return n.CancelErr
	}
	n.cancelled = append(n.cancelled, id)
	return nil
}

// Scheduled returns every notification scheduled so far.
func (n *NotifierSpy) Scheduled() []timeline.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]timeline.Notification, len(n.scheduled))
	copy(out, n.scheduled)
	return out
}

// Cancelled returns every id cancelled so far.
func (n *NotifierSpy) Cancelled() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.cancelled))
	copy(out, n.cancelled)
	return out
}

// LastScheduled returns the most recent notification, if any.
func (n *NotifierSpy) LastScheduled() (timeline.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.scheduled) == 0 {
		return timeline.Notification{}, false
	}
	return n.scheduled[len(n.scheduled)-1], true
}
