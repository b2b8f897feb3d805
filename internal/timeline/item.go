package timeline

import (
	"time"

	"github.com/example/timeline-scheduler/internal/recurrence"
)

// Priority orders items within a day. PriorityAI always sorts first; the
// remaining levels follow in severity order.
type Priority string

const (
	PriorityAI       Priority = "ai"
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
)

// Rank returns the sort position of the priority, lower sorting first.
// Unknown values rank after every defined level.
func (p Priority) Rank() int {
	switch p {
	case PriorityAI:
		return 0
	case PriorityCritical:
		return 1
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 3
	case PriorityLow:
		return 4
	default:
		return 5
	}
}

// Role identifies how an item participates in the timeline. It is derived
// from field combinations, never stored.
type Role string

const (
	// RoleMaster marks a recurrence template. Masters never appear in a day's
	// timeline directly, only through projection.
	RoleMaster Role = "master"
	// RoleInstance marks a persisted occurrence materialized from a master.
	RoleInstance Role = "instance"
	// RoleOneOff marks a standalone occurrence with no recurrence behind it.
	RoleOneOff Role = "one_off"
)

// Item is the unified timeline entity. A single schema serves recurrence
// templates (masters), persisted occurrences (instances and one-offs), and
// transient projections (ghosts). A ghost is an instance-shaped value that has
// not been written to the instances collection; it carries no extra flag.
type Item struct {
	ID string
	// SeriesID names the master an occurrence was projected from. It is a
	// value back-reference: it does not keep the master alive, and an archived
	// master's instances retain it.
	SeriesID    string
	Title       string
	Description string
	Priority    Priority
	Category    string

	// ScheduledTime is the originally planned instant. For masters it doubles
	// as the recurrence anchor: its day starts the series and its time of day
	// is stamped onto every projection.
	ScheduledTime time.Time
	// DeferredUntil overrides ScheduledTime for display and sorting when set.
	DeferredUntil *time.Time

	IsCompleted bool
	// IsSkipped marks an occurrence dismissed without being done. Skipping
	// implies completion; the two are never set independently.
	IsSkipped   bool
	CompletedAt *time.Time
	// IsArchived soft-deletes a master. Instances are hard-deleted instead.
	IsArchived bool
	CreatedAt  time.Time

	// Recurrence is set only on masters.
	Recurrence *recurrence.Rule
	// EffectiveEndDate caches the date beyond which a master stops projecting:
	// the until date verbatim, nil for forever or count-based rules (a count
	// bound's end date is unknowable ahead of time), and frozen to the archive
	// instant when the master is archived.
	EffectiveEndDate *time.Time

	DeferredCount  int
	CompletedCount int
}

// Role derives the item's role from its field combination.
func (i Item) Role() Role {
	switch {
	case i.SeriesID != "":
		return RoleInstance
	case i.Recurrence != nil:
		return RoleMaster
	default:
		return RoleOneOff
	}
}

// EffectiveTime is the display and sort timestamp: the deferred time when the
// item has been snoozed, else the scheduled time.
func (i Item) EffectiveTime() time.Time {
	if i.DeferredUntil != nil {
		return *i.DeferredUntil
	}
	return i.ScheduledTime
}

// IsOverdue reports whether the item is incomplete with its effective time in
// the past.
func (i Item) IsOverdue(now time.Time) bool {
	return !i.IsCompleted && i.EffectiveTime().Before(now)
}

// IsDeferred reports whether the item has been snoozed.
func (i Item) IsDeferred() bool {
	return i.DeferredUntil != nil
}

// SameIdentity reports entity equality. Identity is the ID alone: a ghost and
// the instance materialized from it are the same entity even when their other
// fields have diverged.
func (i Item) SameIdentity(other Item) bool {
	return i.ID == other.ID
}

// NewMaster builds a recurrence template. The rule is required; the effective
// end date cache is derived from its end condition.
func NewMaster(id, title string, scheduled time.Time, rule recurrence.Rule, createdAt time.Time) Item {
	item := Item{
		ID:            id,
		Title:         title,
		Priority:      PriorityNormal,
		ScheduledTime: scheduled,
		CreatedAt:     createdAt,
		Recurrence:    &rule,
	}
	item.EffectiveEndDate = deriveEffectiveEnd(rule)
	return item
}

// NewOneOff builds a standalone occurrence.
func NewOneOff(id, title string, scheduled time.Time, createdAt time.Time) Item {
	return Item{
		ID:            id,
		Title:         title,
		Priority:      PriorityNormal,
		ScheduledTime: scheduled,
		CreatedAt:     createdAt,
	}
}

// NewGhost projects a master onto a specific occurrence instant. Display
// fields are copied, the recurrence is cleared, and the series back-reference
// is set. The occurrence must already combine the target date with the
// master's time of day.
func NewGhost(master Item, occurrence time.Time) Item {
	return Item{
		ID:            GhostID(master.ID, occurrence),
		SeriesID:      master.ID,
		Title:         master.Title,
		Description:   master.Description,
		Priority:      master.Priority,
		Category:      master.Category,
		ScheduledTime: occurrence,
		CreatedAt:     master.CreatedAt,
	}
}

// GhostID derives the deterministic identifier for a master's projection on a
// given day. Determinism makes materialization idempotent across repeated
// queries: the same ghost always carries the same id.
func GhostID(masterID string, occurrence time.Time) string {
	return masterID + "@" + occurrence.Format("2006-01-02")
}

func deriveEffectiveEnd(rule recurrence.Rule) *time.Time {
	if rule.End.Type != recurrence.EndUntil {
		return nil
	}
	end := rule.End.Date
	return &end
}
