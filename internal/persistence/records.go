package persistence

import "time"

// ItemRecord is the wire form of a timeline item. Field names and types must
// round-trip exactly; enums travel as strings.
type ItemRecord struct {
	ID               string            `json:"id"`
	SeriesID         string            `json:"series_id,omitempty"`
	Title            string            `json:"title"`
	Description      string            `json:"description,omitempty"`
	Priority         string            `json:"priority"`
	Category         string            `json:"category,omitempty"`
	ScheduledTime    time.Time         `json:"scheduled_time"`
	DeferredUntil    *time.Time        `json:"deferred_until,omitempty"`
	IsCompleted      bool              `json:"is_completed"`
	IsSkipped        bool              `json:"is_skipped"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
	IsArchived       bool              `json:"is_archived"`
	CreatedAt        time.Time         `json:"created_at"`
	Recurrence       *RecurrenceRecord `json:"recurrence,omitempty"`
	EffectiveEndDate *time.Time        `json:"effective_end_date,omitempty"`
	DeferredCount    int               `json:"deferred_count"`
	CompletedCount   int               `json:"completed_count"`
}

// RecurrenceRecord is the wire form of a recurrence rule.
type RecurrenceRecord struct {
	Frequency string             `json:"frequency"`
	Interval  int                `json:"interval"`
	End       EndConditionRecord `json:"end"`
	// Weekdays uses the Sunday=0 convention.
	Weekdays []int `json:"weekdays,omitempty"`
}

// EndConditionRecord is the tagged-union encoding of a rule's end condition.
// Date is present only for "until", Count only for "count".
type EndConditionRecord struct {
	Type  string     `json:"type"`
	Date  *time.Time `json:"date,omitempty"`
	Count *int       `json:"count,omitempty"`
}
