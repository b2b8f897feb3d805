package rollover

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Service emits host-environment time signals, most importantly the
// calendar-day boundary that re-materializes today's occurrences. Jobs run in
// the location the service was constructed with, so the day boundary tracks
// the engine's calendar rather than server time.
type Service struct {
	cron *cron.Cron
}

// New constructs a Service anchored to the provided location.
func New(loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// OnDayBoundary registers a job firing at local midnight every day.
func (s *Service) OnDayBoundary(job func()) (cron.EntryID, error) {
	// cron format: second minute hour dom month dow
	return s.cron.AddFunc("0 0 0 * * *", job)
}

// OnInterval registers a periodic job every given duration.
func (s *Service) OnInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("rollover: interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), job)
}

// Start begins dispatching registered jobs.
func (s *Service) Start() {
	s.cron.Start()
}

// Stop halts dispatch and waits for running jobs to finish.
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
