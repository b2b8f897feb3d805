package calendar

import (
	"math"
	"time"
)

// Calendar encapsulates the day/week/month arithmetic used by recurrence
// evaluation and timeline queries. The location controls where day boundaries
// fall and the week start anchors week-delta math, so reconfiguring either
// re-anchors every computation without touching engine logic.
type Calendar struct {
	loc       *time.Location
	weekStart time.Weekday
}

// New constructs a Calendar for the provided location and week start.
// A nil location falls back to time.Local.
func New(loc *time.Location, weekStart time.Weekday) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{loc: loc, weekStart: weekStart}
}

// Default returns a Calendar in the local timezone with weeks starting on Monday.
func Default() Calendar {
	return New(time.Local, time.Monday)
}

// Location returns the calendar's timezone.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// WeekStart returns the configured first day of the week.
func (c Calendar) WeekStart() time.Weekday {
	return c.weekStart
}

// StartOfDay truncates the instant to midnight in the calendar's location.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	local := t.In(c.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.Location())
}

// SameDay reports whether two instants fall on the same calendar day.
func (c Calendar) SameDay(a, b time.Time) bool {
	return c.StartOfDay(a).Equal(c.StartOfDay(b))
}

// StartOfWeek truncates the instant to the most recent configured week start.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.StartOfDay(t)
	offset := (int(day.Weekday()) - int(c.weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// Combine takes the calendar date from day and the time of day from clock.
func (c Calendar) Combine(day, clock time.Time) time.Time {
	loc := c.Location()
	y, m, d := day.In(loc).Date()
	local := clock.In(loc)
	return time.Date(y, m, d, local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), loc)
}

// AddDays advances the instant by whole calendar days.
func (c Calendar) AddDays(t time.Time, days int) time.Time {
	return t.In(c.Location()).AddDate(0, 0, days)
}

// DaysBetween counts whole calendar days from the day containing a to the day
// containing b. Negative when b precedes a. Rounding absorbs the hour gained
// or lost across daylight-saving transitions.
func (c Calendar) DaysBetween(a, b time.Time) int {
	from := c.StartOfDay(a)
	to := c.StartOfDay(b)
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// WeeksBetween counts whole weeks between the week anchors containing a and b.
func (c Calendar) WeeksBetween(a, b time.Time) int {
	from := c.StartOfWeek(a)
	to := c.StartOfWeek(b)
	return int(math.Round(to.Sub(from).Hours()/24)) / 7
}

// MonthsBetween counts whole calendar months from a's month to b's month.
func (c Calendar) MonthsBetween(a, b time.Time) int {
	from := a.In(c.Location())
	to := b.In(c.Location())
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// YearsBetween counts calendar years from a's year to b's year.
func (c Calendar) YearsBetween(a, b time.Time) int {
	return b.In(c.Location()).Year() - a.In(c.Location()).Year()
}

// MinutesBetween counts whole minutes elapsed from a to b.
func (c Calendar) MinutesBetween(a, b time.Time) int {
	return int(b.Sub(a) / time.Minute)
}

// HoursBetween counts whole hours elapsed from a to b.
func (c Calendar) HoursBetween(a, b time.Time) int {
	return int(b.Sub(a) / time.Hour)
}
