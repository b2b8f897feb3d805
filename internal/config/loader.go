package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the timeline service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	Timezone        *time.Location
	WeekStart       time.Weekday
	ShutdownTimeout time.Duration
}

// Load parses configuration values from the current process environment.
//
// Every value has a default; invalid entries are collected and reported
// together rather than one at a time.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:timeline.db",
		Timezone:        time.Local,
		WeekStart:       time.Monday,
		ShutdownTimeout: 10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("TIMELINE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "TIMELINE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("TIMELINE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if tzValue := strings.TrimSpace(os.Getenv("TIMELINE_TIMEZONE")); tzValue != "" {
		loc, err := time.LoadLocation(tzValue)
		if err != nil {
			invalid = append(invalid, "TIMELINE_TIMEZONE")
		} else {
			cfg.Timezone = loc
		}
	}

	if weekStartValue := strings.TrimSpace(os.Getenv("TIMELINE_WEEK_START")); weekStartValue != "" {
		weekday, err := parseWeekday(weekStartValue)
		if err != nil {
			invalid = append(invalid, "TIMELINE_WEEK_START")
		} else {
			cfg.WeekStart = weekday
		}
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("TIMELINE_SHUTDOWN_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "TIMELINE_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// parseWeekday accepts a weekday name or a numeric value using the Sunday=0
// convention, matching the persistence encoding of weekday sets.
func parseWeekday(value string) (time.Weekday, error) {
	switch strings.ToLower(value) {
	case "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	case "tuesday", "tue":
		return time.Tuesday, nil
	case "wednesday", "wed":
		return time.Wednesday, nil
	case "thursday", "thu":
		return time.Thursday, nil
	case "friday", "fri":
		return time.Friday, nil
	case "saturday", "sat":
		return time.Saturday, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 0 || n > 6 {
		return time.Sunday, fmt.Errorf("config: invalid weekday %q", value)
	}
	return time.Weekday(n), nil
}
