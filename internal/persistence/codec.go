package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/timeline-scheduler/internal/recurrence"
	"github.com/example/timeline-scheduler/internal/timeline"
)

// EncodeItems serializes a collection snapshot as a JSON array of records.
func EncodeItems(items []timeline.Item) ([]byte, error) {
	records := make([]ItemRecord, 0, len(items))
	for _, item := range items {
		records = append(records, toRecord(item))
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("persistence: encode items: %w", err)
	}
	return data, nil
}

// DecodeItems parses a collection snapshot. Records that fail to decode are
// skipped rather than failing the whole collection; the count of skipped
// records is returned so callers can log it.
func DecodeItems(data []byte) (items []timeline.Item, skipped int, err error) {
	if len(data) == 0 {
		return nil, 0, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("persistence: decode items: %w", err)
	}

	items = make([]timeline.Item, 0, len(raw))
	for _, message := range raw {
		var record ItemRecord
		if err := json.Unmarshal(message, &record); err != nil {
			skipped++
			continue
		}
		items = append(items, fromRecord(record))
	}
	return items, skipped, nil
}

func toRecord(item timeline.Item) ItemRecord {
	return ItemRecord{
		ID:               item.ID,
		SeriesID:         item.SeriesID,
		Title:            item.Title,
		Description:      item.Description,
		Priority:         string(item.Priority),
		Category:         item.Category,
		ScheduledTime:    item.ScheduledTime,
		DeferredUntil:    item.DeferredUntil,
		IsCompleted:      item.IsCompleted,
		IsSkipped:        item.IsSkipped,
		CompletedAt:      item.CompletedAt,
		IsArchived:       item.IsArchived,
		CreatedAt:        item.CreatedAt,
		Recurrence:       toRecurrenceRecord(item.Recurrence),
		EffectiveEndDate: item.EffectiveEndDate,
		DeferredCount:    item.DeferredCount,
		CompletedCount:   item.CompletedCount,
	}
}

func fromRecord(record ItemRecord) timeline.Item {
	return timeline.Item{
		ID:               record.ID,
		SeriesID:         record.SeriesID,
		Title:            record.Title,
		Description:      record.Description,
		Priority:         timeline.Priority(record.Priority),
		Category:         record.Category,
		ScheduledTime:    record.ScheduledTime,
		DeferredUntil:    record.DeferredUntil,
		IsCompleted:      record.IsCompleted,
		IsSkipped:        record.IsSkipped,
		CompletedAt:      record.CompletedAt,
		IsArchived:       record.IsArchived,
		CreatedAt:        record.CreatedAt,
		Recurrence:       fromRecurrenceRecord(record.Recurrence),
		EffectiveEndDate: record.EffectiveEndDate,
		DeferredCount:    record.DeferredCount,
		CompletedCount:   record.CompletedCount,
	}
}

func toRecurrenceRecord(rule *recurrence.Rule) *RecurrenceRecord {
	if rule == nil {
		return nil
	}

	record := &RecurrenceRecord{
		Frequency: string(rule.Frequency),
		Interval:  rule.Interval,
		End:       EndConditionRecord{Type: string(rule.End.Type)},
	}
	switch rule.End.Type {
	case recurrence.EndUntil:
		date := rule.End.Date
		record.End.Date = &date
	case recurrence.EndCount:
		count := rule.End.Count
		record.End.Count = &count
	}
	for _, day := range rule.Weekdays {
		record.Weekdays = append(record.Weekdays, int(day))
	}
	return record
}

func fromRecurrenceRecord(record *RecurrenceRecord) *recurrence.Rule {
	if record == nil {
		return nil
	}

	var weekdays []time.Weekday
	if len(record.Weekdays) > 0 {
		weekdays = make([]time.Weekday, 0, len(record.Weekdays))
		for _, day := range record.Weekdays {
			weekdays = append(weekdays, time.Weekday(day))
		}
	}

	rule := recurrence.NewRule(
		recurrence.Frequency(record.Frequency),
		record.Interval,
		decodeEndCondition(record.End),
		weekdays...,
	)
	return &rule
}

// decodeEndCondition tolerates malformed payloads by defaulting to forever,
// so one bad end condition never discards the whole record.
func decodeEndCondition(record EndConditionRecord) recurrence.EndCondition {
	switch recurrence.EndType(record.Type) {
	case recurrence.EndUntil:
		if record.Date == nil {
			return recurrence.Forever()
		}
		return recurrence.Until(*record.Date)
	case recurrence.EndCount:
		if record.Count == nil {
			return recurrence.Forever()
		}
		return recurrence.Count(*record.Count)
	case recurrence.EndForever:
		return recurrence.Forever()
	default:
		return recurrence.Forever()
	}
}
