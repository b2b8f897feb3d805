package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, name := range []string{
		"TIMELINE_HTTP_PORT", "TIMELINE_SQLITE_DSN", "TIMELINE_TIMEZONE",
		"TIMELINE_WEEK_START", "TIMELINE_SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(name, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.SQLiteDSN != "file:timeline.db" {
		t.Fatalf("expected default dsn, got %q", cfg.SQLiteDSN)
	}
	if cfg.WeekStart != time.Monday {
		t.Fatalf("expected default week start Monday, got %v", cfg.WeekStart)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected default shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TIMELINE_HTTP_PORT", "9090")
	t.Setenv("TIMELINE_SQLITE_DSN", "file:custom.db")
	t.Setenv("TIMELINE_TIMEZONE", "UTC")
	t.Setenv("TIMELINE_WEEK_START", "sunday")
	t.Setenv("TIMELINE_SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
	}
	if cfg.SQLiteDSN != "file:custom.db" {
		t.Fatalf("expected custom dsn, got %q", cfg.SQLiteDSN)
	}
	if cfg.Timezone != time.UTC {
		t.Fatalf("expected UTC, got %v", cfg.Timezone)
	}
	if cfg.WeekStart != time.Sunday {
		t.Fatalf("expected Sunday, got %v", cfg.WeekStart)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_NumericWeekStart(t *testing.T) {
	t.Setenv("TIMELINE_WEEK_START", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WeekStart != time.Sunday {
		t.Fatalf("expected Sunday for 0, got %v", cfg.WeekStart)
	}
}

func TestLoad_CollectsInvalidValues(t *testing.T) {
	t.Setenv("TIMELINE_HTTP_PORT", "not-a-port")
	t.Setenv("TIMELINE_WEEK_START", "someday")
	t.Setenv("TIMELINE_SHUTDOWN_TIMEOUT", "-5s")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error for invalid values")
	}
	for _, name := range []string{"TIMELINE_HTTP_PORT", "TIMELINE_WEEK_START", "TIMELINE_SHUTDOWN_TIMEOUT"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected %s reported, got %q", name, err)
		}
	}
}
