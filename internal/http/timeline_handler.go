package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/example/timeline-scheduler/internal/calendar"
	"github.com/example/timeline-scheduler/internal/recurrence"
	"github.com/example/timeline-scheduler/internal/timeline"
)

type timelineEngine interface {
	ItemsFor(date time.Time) []timeline.Item
	ItemByID(id string) (timeline.Item, bool)
	AddMaster(ctx context.Context, item timeline.Item) error
	AddOneOff(ctx context.Context, item timeline.Item) error
	Update(ctx context.Context, item timeline.Item) error
	Complete(ctx context.Context, id string) error
	Skip(ctx context.Context, id string) error
	Defer(ctx context.Context, id string, byMinutes int) error
	Delete(ctx context.Context, id string) error
	Materialize(ctx context.Context, ghost timeline.Item) error
	MaterializeToday(ctx context.Context) int
}

// TimelineHandler exposes the engine's query and command surface over JSON.
// The engine requires serialized access, so every request holds the handler
// mutex for the duration of the engine call.
type TimelineHandler struct {
	mu        sync.Mutex
	engine    timelineEngine
	cal       calendar.Calendar
	now       func() time.Time
	responder responder
}

// NewTimelineHandler wires the handler to an engine.
func NewTimelineHandler(engine timelineEngine, cal calendar.Calendar, now func() time.Time, logger *slog.Logger) *TimelineHandler {
	if now == nil {
		now = time.Now
	}
	return &TimelineHandler{
		engine:    engine,
		cal:       cal,
		now:       now,
		responder: newResponder(logger),
	}
}

// Query renders the timeline for the requested date, defaulting to today.
func (h *TimelineHandler) Query(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.engine == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date := h.now()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.cal.Location())
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
			return
		}
		date = parsed
	}

	h.mu.Lock()
	items := h.engine.ItemsFor(date)
	h.mu.Unlock()

	h.renderItems(r.Context(), w, items)
}

// CreateMaster registers a recurrence template.
func (h *TimelineHandler) CreateMaster(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, func(ctx context.Context, item timeline.Item) error {
		return h.engine.AddMaster(ctx, item)
	})
}

// CreateOneOff registers a standalone occurrence.
func (h *TimelineHandler) CreateOneOff(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, func(ctx context.Context, item timeline.Item) error {
		return h.engine.AddOneOff(ctx, item)
	})
}

func (h *TimelineHandler) create(w http.ResponseWriter, r *http.Request, insert func(context.Context, timeline.Item) error) {
	if h == nil || h.engine == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	item := req.toItem()

	h.mu.Lock()
	err := insert(r.Context(), item)
	h.mu.Unlock()
	if err != nil {
		h.responder.handleEngineError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toItemResponse(item, h.now()))
}

// Update replaces an item in place.
func (h *TimelineHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.engine == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	itemID, ok := ItemIDFromContext(r.Context())
	if !ok || strings.TrimSpace(itemID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidItemID)
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	item := req.toItem()
	item.ID = itemID

	h.mu.Lock()
	current, ok := h.engine.ItemByID(itemID)
	if !ok {
		h.mu.Unlock()
		h.responder.handleEngineError(r.Context(), w, timeline.ErrNotFound)
		return
	}
	carryLifecycle(&item, current)
	err := h.engine.Update(r.Context(), item)
	h.mu.Unlock()
	if err != nil {
		h.responder.handleEngineError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toItemResponse(item, h.now()))
}

// carryLifecycle copies into a replacement the state a client payload cannot
// express: completion, deferral, counters, archival, and creation time. The
// payload owns the display fields and the schedule; everything the lifecycle
// commands manage survives a rename untouched, and an archived master stays
// archived with its frozen end date.
func carryLifecycle(item *timeline.Item, current timeline.Item) {
	item.SeriesID = current.SeriesID
	item.DeferredUntil = current.DeferredUntil
	item.IsCompleted = current.IsCompleted
	item.IsSkipped = current.IsSkipped
	item.CompletedAt = current.CompletedAt
	item.IsArchived = current.IsArchived
	item.CreatedAt = current.CreatedAt
	item.DeferredCount = current.DeferredCount
	item.CompletedCount = current.CompletedCount
	if item.Priority == "" {
		item.Priority = current.Priority
	}
	if item.Recurrence == nil {
		item.Recurrence = current.Recurrence
	}
	if current.IsArchived {
		item.EffectiveEndDate = current.EffectiveEndDate
	}
}

// Complete marks an instance done.
func (h *TimelineHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(ctx context.Context, id string) error {
		return h.engine.Complete(ctx, id)
	})
}

// Skip dismisses an instance without doing it.
func (h *TimelineHandler) Skip(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(ctx context.Context, id string) error {
		return h.engine.Skip(ctx, id)
	})
}

// Delete removes an instance or archives a master.
func (h *TimelineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(ctx context.Context, id string) error {
		return h.engine.Delete(ctx, id)
	})
}

func (h *TimelineHandler) command(w http.ResponseWriter, r *http.Request, run func(context.Context, string) error) {
	if h == nil || h.engine == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	itemID, ok := ItemIDFromContext(r.Context())
	if !ok || strings.TrimSpace(itemID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidItemID)
		return
	}

	h.mu.Lock()
	err := run(r.Context(), itemID)
	h.mu.Unlock()
	if err != nil {
		h.responder.handleEngineError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Defer snoozes an instance by the requested number of minutes.
func (h *TimelineHandler) Defer(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.engine == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	itemID, ok := ItemIDFromContext(r.Context())
	if !ok || strings.TrimSpace(itemID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidItemID)
		return
	}

	var req deferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.Minutes <= 0 {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDeferMinutes)
		return
	}

	h.mu.Lock()
	err := h.engine.Defer(r.Context(), itemID, req.Minutes)
	h.mu.Unlock()
	if err != nil {
		h.responder.handleEngineError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Materialize promotes a ghost from the request body into a persisted instance.
func (h *TimelineHandler) Materialize(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.engine == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	ghost := req.toItem()

	h.mu.Lock()
	err := h.engine.Materialize(r.Context(), ghost)
	h.mu.Unlock()
	if err != nil {
		h.responder.handleEngineError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toItemResponse(ghost, h.now()))
}

// RunDayBoundary exposes MaterializeToday for the rollover job and manual
// invocation. Callers share the handler mutex with HTTP traffic, keeping
// engine access serialized.
func (h *TimelineHandler) RunDayBoundary(ctx context.Context) int {
	if h == nil || h.engine == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine.MaterializeToday(ctx)
}

func (h *TimelineHandler) renderItems(ctx context.Context, w http.ResponseWriter, items []timeline.Item) {
	now := h.now()
	payload := make([]itemResponse, 0, len(items))
	for _, item := range items {
		payload = append(payload, toItemResponse(item, now))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, timelineResponse{Items: payload})
}

type itemRequest struct {
	ID            string             `json:"id,omitempty"`
	SeriesID      string             `json:"series_id,omitempty"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	Priority      string             `json:"priority,omitempty"`
	Category      string             `json:"category,omitempty"`
	ScheduledTime time.Time          `json:"scheduled_time"`
	Recurrence    *recurrencePayload `json:"recurrence,omitempty"`
}

type recurrencePayload struct {
	Frequency string              `json:"frequency"`
	Interval  int                 `json:"interval"`
	End       endConditionPayload `json:"end"`
	Weekdays  []int               `json:"weekdays,omitempty"`
}

type endConditionPayload struct {
	Type  string     `json:"type"`
	Date  *time.Time `json:"date,omitempty"`
	Count *int       `json:"count,omitempty"`
}

type deferRequest struct {
	Minutes int `json:"minutes"`
}

func (r itemRequest) toItem() timeline.Item {
	item := timeline.Item{
		ID:            r.ID,
		SeriesID:      r.SeriesID,
		Title:         strings.TrimSpace(r.Title),
		Description:   r.Description,
		Priority:      timeline.Priority(r.Priority),
		Category:      r.Category,
		ScheduledTime: r.ScheduledTime,
	}
	if r.Recurrence != nil {
		rule := r.Recurrence.toRule()
		item.Recurrence = &rule
	}
	return item
}

func (p recurrencePayload) toRule() recurrence.Rule {
	weekdays := make([]time.Weekday, 0, len(p.Weekdays))
	for _, day := range p.Weekdays {
		weekdays = append(weekdays, time.Weekday(day))
	}

	end := recurrence.Forever()
	switch recurrence.EndType(p.End.Type) {
	case recurrence.EndUntil:
		if p.End.Date != nil {
			end = recurrence.Until(*p.End.Date)
		}
	case recurrence.EndCount:
		if p.End.Count != nil {
			end = recurrence.Count(*p.End.Count)
		}
	}

	return recurrence.NewRule(recurrence.Frequency(p.Frequency), p.Interval, end, weekdays...)
}

type timelineResponse struct {
	Items []itemResponse `json:"items"`
}

type itemResponse struct {
	ID               string             `json:"id"`
	SeriesID         string             `json:"series_id,omitempty"`
	Role             string             `json:"role"`
	Title            string             `json:"title"`
	Description      string             `json:"description,omitempty"`
	Priority         string             `json:"priority"`
	Category         string             `json:"category,omitempty"`
	ScheduledTime    time.Time          `json:"scheduled_time"`
	DeferredUntil    *time.Time         `json:"deferred_until,omitempty"`
	EffectiveTime    time.Time          `json:"effective_time"`
	IsCompleted      bool               `json:"is_completed"`
	IsSkipped        bool               `json:"is_skipped"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty"`
	IsArchived       bool               `json:"is_archived"`
	IsOverdue        bool               `json:"is_overdue"`
	CreatedAt        time.Time          `json:"created_at"`
	Recurrence       *recurrencePayload `json:"recurrence,omitempty"`
	EffectiveEndDate *time.Time         `json:"effective_end_date,omitempty"`
	DeferredCount    int                `json:"deferred_count"`
	CompletedCount   int                `json:"completed_count"`
}

func toItemResponse(item timeline.Item, now time.Time) itemResponse {
	response := itemResponse{
		ID:               item.ID,
		SeriesID:         item.SeriesID,
		Role:             string(item.Role()),
		Title:            item.Title,
		Description:      item.Description,
		Priority:         string(item.Priority),
		Category:         item.Category,
		ScheduledTime:    item.ScheduledTime,
		DeferredUntil:    item.DeferredUntil,
		EffectiveTime:    item.EffectiveTime(),
		IsCompleted:      item.IsCompleted,
		IsSkipped:        item.IsSkipped,
		CompletedAt:      item.CompletedAt,
		IsArchived:       item.IsArchived,
		IsOverdue:        item.IsOverdue(now),
		CreatedAt:        item.CreatedAt,
		EffectiveEndDate: item.EffectiveEndDate,
		DeferredCount:    item.DeferredCount,
		CompletedCount:   item.CompletedCount,
	}
	if item.Recurrence != nil {
		response.Recurrence = toRecurrencePayload(*item.Recurrence)
	}
	return response
}

func toRecurrencePayload(rule recurrence.Rule) *recurrencePayload {
	payload := &recurrencePayload{
		Frequency: string(rule.Frequency),
		Interval:  rule.Interval,
		End:       endConditionPayload{Type: string(rule.End.Type)},
	}
	switch rule.End.Type {
	case recurrence.EndUntil:
		date := rule.End.Date
		payload.End.Date = &date
	case recurrence.EndCount:
		count := rule.End.Count
		payload.End.Count = &count
	}
	for _, day := range rule.Weekdays {
		payload.Weekdays = append(payload.Weekdays, int(day))
	}
	return payload
}
