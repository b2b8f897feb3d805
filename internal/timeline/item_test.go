package timeline

import (
	"testing"
	"time"

	"github.com/example/timeline-scheduler/internal/recurrence"
)

var itemRef = time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

func TestItem_RoleDerivation(t *testing.T) {
	t.Parallel()

	rule := recurrence.NewRule(recurrence.FrequencyDaily, 1, recurrence.Forever())

	master := NewMaster("m-1", "Morning Yoga", itemRef, rule, itemRef)
	if master.Role() != RoleMaster {
		t.Fatalf("expected master role, got %s", master.Role())
	}

	ghost := NewGhost(master, itemRef.AddDate(0, 0, 3))
	if ghost.Role() != RoleInstance {
		t.Fatalf("expected instance role for ghost, got %s", ghost.Role())
	}

	oneOff := NewOneOff("o-1", "Dentist", itemRef, itemRef)
	if oneOff.Role() != RoleOneOff {
		t.Fatalf("expected one-off role, got %s", oneOff.Role())
	}
}

func TestItem_EffectiveTimePrefersDeferral(t *testing.T) {
	t.Parallel()

	item := NewOneOff("o-1", "Dentist", itemRef, itemRef)
	if !item.EffectiveTime().Equal(itemRef) {
		t.Fatalf("expected scheduled time, got %v", item.EffectiveTime())
	}

	deferred := itemRef.Add(2 * time.Hour)
	item.DeferredUntil = &deferred
	if !item.EffectiveTime().Equal(deferred) {
		t.Fatalf("expected deferred time, got %v", item.EffectiveTime())
	}
	if !item.IsDeferred() {
		t.Fatal("expected item to report deferred")
	}
}

func TestItem_OverdueTracksCompletionAndEffectiveTime(t *testing.T) {
	t.Parallel()

	item := NewOneOff("o-1", "Dentist", itemRef, itemRef)
	now := itemRef.Add(time.Hour)

	if !item.IsOverdue(now) {
		t.Fatal("expected incomplete past item to be overdue")
	}

	item.IsCompleted = true
	if item.IsOverdue(now) {
		t.Fatal("expected completed item to never be overdue")
	}

	item.IsCompleted = false
	deferred := now.Add(time.Hour)
	item.DeferredUntil = &deferred
	if item.IsOverdue(now) {
		t.Fatal("expected deferral into the future to clear overdue")
	}
}

func TestItem_GhostCopiesDisplayFieldsAndClearsRecurrence(t *testing.T) {
	t.Parallel()

	rule := recurrence.NewRule(recurrence.FrequencyDaily, 1, recurrence.Forever())
	master := NewMaster("m-1", "Morning Yoga", itemRef, rule, itemRef)
	master.Description = "20 minutes"
	master.Category = "health"
	master.Priority = PriorityHigh

	occurrence := itemRef.AddDate(0, 0, 14)
	ghost := NewGhost(master, occurrence)

	if ghost.Recurrence != nil {
		t.Fatal("expected ghost recurrence to be cleared")
	}
	if ghost.SeriesID != master.ID {
		t.Fatalf("expected series back-reference %q, got %q", master.ID, ghost.SeriesID)
	}
	if !ghost.ScheduledTime.Equal(occurrence) {
		t.Fatalf("expected scheduled time %v, got %v", occurrence, ghost.ScheduledTime)
	}
	if ghost.Title != master.Title || ghost.Description != master.Description ||
		ghost.Category != master.Category || ghost.Priority != master.Priority {
		t.Fatal("expected display fields copied from the master")
	}
}

func TestItem_GhostIDIsDeterministicPerDay(t *testing.T) {
	t.Parallel()

	rule := recurrence.NewRule(recurrence.FrequencyDaily, 1, recurrence.Forever())
	master := NewMaster("m-1", "Morning Yoga", itemRef, rule, itemRef)

	first := NewGhost(master, itemRef.AddDate(0, 0, 5))
	second := NewGhost(master, itemRef.AddDate(0, 0, 5))
	other := NewGhost(master, itemRef.AddDate(0, 0, 6))

	if !first.SameIdentity(second) {
		t.Fatal("expected identical ghost ids for the same day")
	}
	if first.SameIdentity(other) {
		t.Fatal("expected different ghost ids on different days")
	}
}

func TestItem_EffectiveEndDateCache(t *testing.T) {
	t.Parallel()

	until := itemRef.AddDate(0, 1, 0)

	bounded := NewMaster("m-1", "Course", itemRef, recurrence.NewRule(recurrence.FrequencyDaily, 1, recurrence.Until(until)), itemRef)
	if bounded.EffectiveEndDate == nil || !bounded.EffectiveEndDate.Equal(until) {
		t.Fatalf("expected effective end %v, got %v", until, bounded.EffectiveEndDate)
	}

	forever := NewMaster("m-2", "Habit", itemRef, recurrence.NewRule(recurrence.FrequencyDaily, 1, recurrence.Forever()), itemRef)
	if forever.EffectiveEndDate != nil {
		t.Fatal("expected no effective end for a forever rule")
	}

	// Count-based end dates are unknowable up front and stay nil.
	counted := NewMaster("m-3", "Course", itemRef, recurrence.NewRule(recurrence.FrequencyDaily, 1, recurrence.Count(5)), itemRef)
	if counted.EffectiveEndDate != nil {
		t.Fatal("expected no effective end for a count rule")
	}
}

func TestPriority_RankOrdersAIFirst(t *testing.T) {
	t.Parallel()

	ordered := []Priority{PriorityAI, PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Rank() >= ordered[i].Rank() {
			t.Fatalf("expected %s to rank before %s", ordered[i-1], ordered[i])
		}
	}
	if Priority("bogus").Rank() <= PriorityLow.Rank() {
		t.Fatal("expected unknown priorities to rank last")
	}
}
