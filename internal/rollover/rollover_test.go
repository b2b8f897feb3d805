package rollover

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestService_OnIntervalRejectsNonPositiveDuration(t *testing.T) {
	t.Parallel()

	s := New(time.UTC)
	if _, err := s.OnInterval(0, func() {}); err == nil {
		t.Fatal("expected an error for a zero interval")
	}
	if _, err := s.OnInterval(-time.Second, func() {}); err == nil {
		t.Fatal("expected an error for a negative interval")
	}
}

func TestService_OnIntervalDispatchesJob(t *testing.T) {
	t.Parallel()

	s := New(time.UTC)
	var fired atomic.Int32
	if _, err := s.OnInterval(time.Second, func() { fired.Add(1) }); err != nil {
		t.Fatalf("register interval job: %v", err)
	}

	s.Start()
	defer s.Stop()

	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-deadline:
			t.Fatal("interval job never fired")
		case <-tick.C:
			if fired.Load() > 0 {
				return
			}
		}
	}
}

func TestService_OnDayBoundaryRegisters(t *testing.T) {
	t.Parallel()

	s := New(nil)
	if _, err := s.OnDayBoundary(func() {}); err != nil {
		t.Fatalf("register day-boundary job: %v", err)
	}
}
