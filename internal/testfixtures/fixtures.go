package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/timeline-scheduler/internal/recurrence"
	"github.com/example/timeline-scheduler/internal/timeline"
)

var itemCounter uint64

var referenceTime = time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures:
// 2025-01-01 09:00 UTC.
func ReferenceTime() time.Time {
	return referenceTime
}

// ItemOption configures a generated item fixture.
type ItemOption func(*timeline.Item)

// NewMasterFixture returns a deterministic daily recurrence template anchored
// at the reference time, with optional overrides.
func NewMasterFixture(opts ...ItemOption) timeline.Item {
	idx := atomic.AddUint64(&itemCounter, 1)
	rule := recurrence.NewRule(recurrence.FrequencyDaily, 1, recurrence.Forever())
	item := timeline.NewMaster(
		fmt.Sprintf("master-%03d", idx),
		fmt.Sprintf("Master %03d", idx),
		referenceTime,
		rule,
		referenceTime,
	)
	for _, opt := range opts {
		opt(&item)
	}
	return item
}

// NewOneOffFixture returns a deterministic one-off occurrence with optional
// overrides.
func NewOneOffFixture(opts ...ItemOption) timeline.Item {
	idx := atomic.AddUint64(&itemCounter, 1)
	item := timeline.NewOneOff(
		fmt.Sprintf("item-%03d", idx),
		fmt.Sprintf("Item %03d", idx),
		referenceTime,
		referenceTime,
	)
	for _, opt := range opts {
		opt(&item)
	}
	return item
}

// WithTitle overrides the fixture title.
func WithTitle(title string) ItemOption {
	return func(item *timeline.Item) { item.Title = title }
}

// WithPriority overrides the fixture priority.
func WithPriority(priority timeline.Priority) ItemOption {
	return func(item *timeline.Item) { item.Priority = priority }
}

// WithScheduledTime overrides the planned instant. For masters this moves the
// recurrence anchor as well.
func WithScheduledTime(t time.Time) ItemOption {
	return func(item *timeline.Item) { item.ScheduledTime = t }
}

// WithRecurrence replaces the recurrence rule and rederives the effective end
// date the way the master factory would.
func WithRecurrence(rule recurrence.Rule) ItemOption {
	return func(item *timeline.Item) {
		item.Recurrence = &rule
		if rule.End.Type == recurrence.EndUntil {
			end := rule.End.Date
			item.EffectiveEndDate = &end
		} else {
			item.EffectiveEndDate = nil
		}
	}
}

// WithSeries turns the fixture into an instance of the given master.
func WithSeries(masterID string) ItemOption {
	return func(item *timeline.Item) {
		item.SeriesID = masterID
		item.Recurrence = nil
		item.EffectiveEndDate = nil
	}
}

// WithCompleted marks the fixture completed at the reference time.
func WithCompleted() ItemOption {
	return func(item *timeline.Item) {
		completed := referenceTime
		item.IsCompleted = true
		item.CompletedAt = &completed
	}
}
