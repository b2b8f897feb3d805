package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/timeline-scheduler/internal/calendar"
	"github.com/example/timeline-scheduler/internal/config"
	httptransport "github.com/example/timeline-scheduler/internal/http"
	"github.com/example/timeline-scheduler/internal/logging"
	"github.com/example/timeline-scheduler/internal/notify"
	"github.com/example/timeline-scheduler/internal/persistence/sqlite"
	"github.com/example/timeline-scheduler/internal/rollover"
	"github.com/example/timeline-scheduler/internal/timeline"
)

func main() {
	logger := logging.New(os.Stdout, slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := store.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	cal := calendar.New(cfg.Timezone, cfg.WeekStart)
	notifier := notify.NewLogNotifier(logger)
	idGenerator := func() string { return uuid.NewString() }
	now := time.Now

	engine := timeline.NewEngineWithLogger(ctx, store, notifier, cal, idGenerator, now, logger)

	handler := httptransport.NewTimelineHandler(engine, cal, now, logger)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Timeline:   handler,
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	boundary := rollover.New(cal.Location())
	if _, err := boundary.OnDayBoundary(func() {
		count := handler.RunDayBoundary(context.Background())
		logger.Info("day boundary processed", "materialized", count)
	}); err != nil {
		logger.Error("failed to register day boundary job", "error", err)
		os.Exit(1)
	}
	// Hourly catch-up for the midnight job: materialization is idempotent, and
	// a process suspended across the boundary would otherwise wait a full day.
	if _, err := boundary.OnInterval(time.Hour, func() {
		if count := handler.RunDayBoundary(context.Background()); count > 0 {
			logger.Info("missed day boundary recovered", "materialized", count)
		}
	}); err != nil {
		logger.Error("failed to register catch-up job", "error", err)
		os.Exit(1)
	}
	boundary.Start()
	defer boundary.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("timeline API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
