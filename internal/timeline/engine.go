package timeline

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/timeline-scheduler/internal/calendar"
)

// Collection names used with the persistence store. Each holds a full
// serialized snapshot of one engine collection.
const (
	CollectionMasters   = "masters"
	CollectionInstances = "instances"
)

// Store is the persistence collaborator. Collections are loaded once at engine
// construction and rewritten wholesale after every mutating command; the
// engine never issues incremental updates.
type Store interface {
	LoadItems(ctx context.Context, collection string) ([]Item, error)
	SaveItems(ctx context.Context, collection string, items []Item) error
}

// Notification describes a one-shot alert keyed by the item's id.
type Notification struct {
	ID     string
	Title  string
	Body   string
	FireAt time.Time
}

// Notifier is the notification-scheduling collaborator. Calls are best-effort:
// the engine neither awaits confirmation nor retries failures.
type Notifier interface {
	Schedule(ctx context.Context, n Notification) error
	Cancel(ctx context.Context, id string) error
}

// Engine orchestrates the two timeline collections: masters (recurrence
// templates) and instances (persisted occurrences). Reads flow through the
// sieve and ghost projection; writes flow through the lifecycle commands,
// which mirror state to the store after every mutation.
//
// The engine is designed for single-writer, serialized access. No method
// locks; callers that share an engine across goroutines must serialize every
// call, query included.
type Engine struct {
	store       Store
	notifier    Notifier
	cal         calendar.Calendar
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	masters   []Item
	instances []Item
}

// NewEngine wires dependencies, loads both collections, and materializes
// today's occurrences. A load failure falls back to an empty collection so a
// corrupt store never prevents startup.
func NewEngine(ctx context.Context, store Store, notifier Notifier, cal calendar.Calendar, idGenerator func() string, now func() time.Time) *Engine {
	return NewEngineWithLogger(ctx, store, notifier, cal, idGenerator, now, nil)
}

// NewEngineWithLogger behaves like NewEngine with an explicit base logger.
func NewEngineWithLogger(ctx context.Context, store Store, notifier Notifier, cal calendar.Calendar, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Engine {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	engine := &Engine{
		store:       store,
		notifier:    notifier,
		cal:         cal,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
	engine.load(ctx)
	engine.MaterializeToday(ctx)
	return engine
}

func (e *Engine) load(ctx context.Context) {
	if e.store == nil {
		return
	}
	logger := engineLogger(ctx, e.logger, "load")

	masters, err := e.store.LoadItems(ctx, CollectionMasters)
	if err != nil {
		logger.WarnContext(ctx, "failed to load masters, starting empty", "error", err)
		masters = nil
	}
	instances, err := e.store.LoadItems(ctx, CollectionInstances)
	if err != nil {
		logger.WarnContext(ctx, "failed to load instances, starting empty", "error", err)
		instances = nil
	}

	e.masters = masters
	e.instances = instances
	logger.InfoContext(ctx, "collections loaded", "masters", len(masters), "instances", len(instances))
}

// ItemsFor returns the timeline for the calendar day containing date: real
// instances merged with ghost projections, ai-priority items first, then
// ascending effective time. The result is a fresh projection each call, never
// a cached view; callers must re-query after any mutation.
func (e *Engine) ItemsFor(date time.Time) []Item {
	day := e.cal.StartOfDay(date)

	real := make([]Item, 0)
	existingSeries := make(map[string]struct{})
	for _, item := range e.instances {
		if item.IsArchived || !e.cal.SameDay(item.EffectiveTime(), day) {
			continue
		}
		real = append(real, item)
		if item.SeriesID != "" {
			existingSeries[item.SeriesID] = struct{}{}
		}
	}

	merged := append(real, e.projectGhosts(day, existingSeries)...)

	sort.SliceStable(merged, func(i, j int) bool {
		ai, aj := merged[i].Priority == PriorityAI, merged[j].Priority == PriorityAI
		if ai != aj {
			return ai
		}
		return merged[i].EffectiveTime().Before(merged[j].EffectiveTime())
	})

	return merged
}

// projectGhosts runs the sieve and recurrence evaluation for one day. The
// sieve is a cheap range check over masters: archived templates, templates
// starting after the day, and templates whose effective end precedes the day
// are skipped before any rule evaluation runs.
func (e *Engine) projectGhosts(day time.Time, existingSeries map[string]struct{}) []Item {
	ghosts := make([]Item, 0)
	for _, master := range e.masters {
		if master.IsArchived || master.Recurrence == nil {
			continue
		}
		if e.cal.StartOfDay(master.ScheduledTime).After(day) {
			continue
		}
		if master.EffectiveEndDate != nil && e.cal.StartOfDay(*master.EffectiveEndDate).Before(day) {
			continue
		}
		if _, ok := existingSeries[master.ID]; ok {
			continue
		}

		occurrence := e.cal.Combine(day, master.ScheduledTime)
		if master.Recurrence.Triggers(occurrence, master.ScheduledTime, e.cal) {
			ghosts = append(ghosts, NewGhost(master, occurrence))
		}
	}
	return ghosts
}

// Materialize promotes a ghost into a persisted instance. It is idempotent:
// when an instance with the ghost's id already exists, nothing changes.
func (e *Engine) Materialize(ctx context.Context, ghost Item) error {
	logger := engineLogger(ctx, e.logger, "materialize", "item_id", ghost.ID)

	if ghost.Role() != RoleInstance {
		logger.WarnContext(ctx, "rejected: only instance-shaped items can be materialized", "role", string(ghost.Role()))
		return ErrWrongRole
	}
	if e.findInstance(ghost.ID) >= 0 {
		logger.DebugContext(ctx, "instance already materialized")
		return nil
	}

	e.instances = append(e.instances, ghost)
	e.persist(ctx)
	e.scheduleAlert(ctx, ghost)
	return nil
}

// MaterializeToday writes every ghost projected for the current day into the
// instances collection, so today's recurring occurrences are always real,
// mutable entities. It runs at construction and on every day-boundary signal.
// The number of newly materialized instances is returned.
func (e *Engine) MaterializeToday(ctx context.Context) int {
	day := e.cal.StartOfDay(e.now())

	existingSeries := make(map[string]struct{})
	for _, item := range e.instances {
		if item.SeriesID != "" && e.cal.SameDay(item.EffectiveTime(), day) {
			existingSeries[item.SeriesID] = struct{}{}
		}
	}

	ghosts := e.projectGhosts(day, existingSeries)
	if len(ghosts) == 0 {
		return 0
	}

	e.instances = append(e.instances, ghosts...)
	e.persist(ctx)
	for _, ghost := range ghosts {
		e.scheduleAlert(ctx, ghost)
	}

	engineLogger(ctx, e.logger, "materialize_today").InfoContext(ctx, "materialized today's occurrences", "count", len(ghosts))
	return len(ghosts)
}

// AddMaster registers a recurrence template. Non-archived masters deduplicate
// by lowercased title. Today's projection is materialized immediately so a
// rule starting today appears without waiting for the next day boundary.
func (e *Engine) AddMaster(ctx context.Context, item Item) error {
	logger := engineLogger(ctx, e.logger, "add_master", "title", item.Title)

	if item.Role() != RoleMaster {
		logger.WarnContext(ctx, "rejected: item is not a master", "role", string(item.Role()))
		return ErrWrongRole
	}

	title := strings.ToLower(strings.TrimSpace(item.Title))
	for _, master := range e.masters {
		if !master.IsArchived && strings.ToLower(strings.TrimSpace(master.Title)) == title {
			logger.WarnContext(ctx, "rejected: duplicate master title", "existing_id", master.ID)
			return ErrDuplicateTitle
		}
	}

	e.fillDefaults(&item)
	item.EffectiveEndDate = deriveEffectiveEnd(*item.Recurrence)

	e.masters = append(e.masters, item)
	e.persist(ctx)
	logger.InfoContext(ctx, "master added", "item_id", item.ID)

	e.MaterializeToday(ctx)
	return nil
}

// AddOneOff registers a standalone occurrence and schedules its alert when it
// lies in the future.
func (e *Engine) AddOneOff(ctx context.Context, item Item) error {
	logger := engineLogger(ctx, e.logger, "add_one_off", "title", item.Title)

	if item.Role() != RoleOneOff {
		logger.WarnContext(ctx, "rejected: item is not a one-off", "role", string(item.Role()))
		return ErrWrongRole
	}

	e.fillDefaults(&item)
	e.instances = append(e.instances, item)
	e.persist(ctx)
	e.scheduleAlert(ctx, item)
	logger.InfoContext(ctx, "one-off added", "item_id", item.ID)
	return nil
}

// Update replaces an item in place, instances first, then masters. Instance
// updates cancel the pending alert and reschedule it when the item is still
// open with a future effective time.
func (e *Engine) Update(ctx context.Context, item Item) error {
	logger := engineLogger(ctx, e.logger, "update", "item_id", item.ID)

	if idx := e.findInstance(item.ID); idx >= 0 {
		e.instances[idx] = item
		e.persist(ctx)
		e.cancelAlert(ctx, item.ID)
		e.scheduleAlert(ctx, item)
		return nil
	}

	if idx := e.findMaster(item.ID); idx >= 0 {
		if !item.IsArchived && item.Recurrence != nil {
			item.EffectiveEndDate = deriveEffectiveEnd(*item.Recurrence)
		}
		e.masters[idx] = item
		e.persist(ctx)
		return nil
	}

	logger.WarnContext(ctx, "not found")
	return ErrNotFound
}

// Complete marks an instance done, stamps the completion time, and cancels its
// alert. Ghosts must be materialized first.
func (e *Engine) Complete(ctx context.Context, id string) error {
	return e.finish(ctx, id, "complete", false)
}

// Skip dismisses an instance without doing it. A skipped item is also
// completed; the two flags always travel together.
func (e *Engine) Skip(ctx context.Context, id string) error {
	return e.finish(ctx, id, "skip", true)
}

func (e *Engine) finish(ctx context.Context, id, operation string, skipped bool) error {
	logger := engineLogger(ctx, e.logger, operation, "item_id", id)

	idx := e.findInstance(id)
	if idx < 0 {
		return e.missingInstance(ctx, logger, id)
	}

	now := e.now()
	item := e.instances[idx]
	item.IsCompleted = true
	item.IsSkipped = skipped
	item.CompletedAt = &now
	item.CompletedCount++
	e.instances[idx] = item

	e.persist(ctx)
	e.cancelAlert(ctx, id)
	return nil
}

// Defer snoozes an instance by the given number of minutes. The new deferred
// time is anchored at whichever is later, now or the current effective time,
// so deferring an overdue item counts from now rather than its stale schedule.
func (e *Engine) Defer(ctx context.Context, id string, byMinutes int) error {
	logger := engineLogger(ctx, e.logger, "defer", "item_id", id, "minutes", byMinutes)

	idx := e.findInstance(id)
	if idx < 0 {
		return e.missingInstance(ctx, logger, id)
	}

	item := e.instances[idx]
	anchor := item.EffectiveTime()
	if now := e.now(); now.After(anchor) {
		anchor = now
	}
	until := anchor.Add(time.Duration(byMinutes) * time.Minute)
	item.DeferredUntil = &until
	item.DeferredCount++
	e.instances[idx] = item

	e.persist(ctx)
	e.cancelAlert(ctx, id)
	e.scheduleAlert(ctx, item)
	return nil
}

// Delete removes an instance outright, or archives a master. Archiving
// freezes the effective end date at the current instant, which stops all
// future projection for the series without destroying its history.
func (e *Engine) Delete(ctx context.Context, id string) error {
	logger := engineLogger(ctx, e.logger, "delete", "item_id", id)

	if idx := e.findInstance(id); idx >= 0 {
		e.instances = append(e.instances[:idx], e.instances[idx+1:]...)
		e.persist(ctx)
		e.cancelAlert(ctx, id)
		return nil
	}

	if idx := e.findMaster(id); idx >= 0 {
		frozen := e.now()
		master := e.masters[idx]
		master.IsArchived = true
		master.EffectiveEndDate = &frozen
		e.masters[idx] = master
		e.persist(ctx)
		logger.InfoContext(ctx, "master archived")
		return nil
	}

	logger.WarnContext(ctx, "not found")
	return ErrNotFound
}

// ItemByID returns the stored item with the given id, instances first. Ghosts
// are not stored, so an unmaterialized ghost id reports no item.
func (e *Engine) ItemByID(id string) (Item, bool) {
	if idx := e.findInstance(id); idx >= 0 {
		return e.instances[idx], true
	}
	if idx := e.findMaster(id); idx >= 0 {
		return e.masters[idx], true
	}
	return Item{}, false
}

func (e *Engine) findInstance(id string) int {
	for i, item := range e.instances {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) findMaster(id string) int {
	for i, item := range e.masters {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) fillDefaults(item *Item) {
	if item.ID == "" {
		item.ID = e.idGenerator()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = e.now()
	}
	if item.Priority == "" {
		item.Priority = PriorityNormal
	}
}

// missingInstance distinguishes an unmaterialized ghost from a genuinely
// unknown id, so callers violating the materialize-first contract get a
// dedicated signal.
func (e *Engine) missingInstance(ctx context.Context, logger *slog.Logger, id string) error {
	if masterID, ok := ghostMasterID(id); ok && e.findMaster(masterID) >= 0 {
		logger.WarnContext(ctx, "rejected: ghost was never materialized")
		return ErrNotMaterialized
	}
	logger.WarnContext(ctx, "not found")
	return ErrNotFound
}

func ghostMasterID(id string) (string, bool) {
	at := strings.LastIndex(id, "@")
	if at <= 0 {
		return "", false
	}
	return id[:at], true
}

// persist mirrors both collections to the store. Durability is best-effort:
// failures are logged and swallowed, never propagated to the command's caller.
func (e *Engine) persist(ctx context.Context) {
	if e.store == nil {
		return
	}
	logger := engineLogger(ctx, e.logger, "persist")

	if err := e.store.SaveItems(ctx, CollectionMasters, e.masters); err != nil {
		logger.ErrorContext(ctx, "failed to save masters", "error", err)
	}
	if err := e.store.SaveItems(ctx, CollectionInstances, e.instances); err != nil {
		logger.ErrorContext(ctx, "failed to save instances", "error", err)
	}
}

// scheduleAlert asks the notifier for a one-shot alert when the item is still
// open with a future effective time. Fire-and-forget: errors are only logged.
func (e *Engine) scheduleAlert(ctx context.Context, item Item) {
	if e.notifier == nil || item.IsCompleted {
		return
	}
	fireAt := item.EffectiveTime()
	if !fireAt.After(e.now()) {
		return
	}

	err := e.notifier.Schedule(ctx, Notification{
		ID:     item.ID,
		Title:  item.Title,
		Body:   item.Description,
		FireAt: fireAt,
	})
	if err != nil {
		engineLogger(ctx, e.logger, "schedule_alert", "item_id", item.ID).WarnContext(ctx, "failed to schedule alert", "error", err)
	}
}

func (e *Engine) cancelAlert(ctx context.Context, id string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Cancel(ctx, id); err != nil {
		engineLogger(ctx, e.logger, "cancel_alert", "item_id", id).WarnContext(ctx, "failed to cancel alert", "error", err)
	}
}
