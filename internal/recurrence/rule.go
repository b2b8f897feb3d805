package recurrence

import (
	"time"

	"github.com/example/timeline-scheduler/internal/calendar"
)

// Frequency represents supported recurrence intervals.
type Frequency string

const (
	// FrequencyUnspecified indicates the rule frequency is not set.
	FrequencyUnspecified Frequency = ""
	// FrequencyMinutely repeats every Interval minutes from the start instant.
	FrequencyMinutely Frequency = "minutely"
	// FrequencyHourly repeats every Interval hours from the start instant.
	FrequencyHourly Frequency = "hourly"
	// FrequencyDaily repeats every Interval calendar days.
	FrequencyDaily Frequency = "daily"
	// FrequencyWeekly repeats on the selected weekdays every Interval weeks.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyMonthly repeats on the start's day-of-month every Interval months.
	FrequencyMonthly Frequency = "monthly"
	// FrequencyYearly repeats on the start's month and day every Interval years.
	FrequencyYearly Frequency = "yearly"
)

// EndType discriminates the end-condition union.
type EndType string

const (
	// EndForever indicates the rule never expires.
	EndForever EndType = "forever"
	// EndUntil bounds the rule by an inclusive final date.
	EndUntil EndType = "until"
	// EndCount bounds the rule by an occurrence count. The count is advisory:
	// the rule has no notion of how many times it has fired, so Triggers does
	// not consult it. Callers that want count semantics must track occurrences
	// externally.
	EndCount EndType = "count"
)

// EndCondition is the tagged union describing when a rule stops applying.
// Date is meaningful only for EndUntil, Count only for EndCount.
type EndCondition struct {
	Type  EndType
	Date  time.Time
	Count int
}

// Forever returns the unbounded end condition.
func Forever() EndCondition {
	return EndCondition{Type: EndForever}
}

// Until returns an end condition bounded by an inclusive final date.
func Until(date time.Time) EndCondition {
	return EndCondition{Type: EndUntil, Date: date}
}

// Count returns an advisory occurrence-count end condition.
func Count(n int) EndCondition {
	return EndCondition{Type: EndCount, Count: n}
}

// Rule describes a repeat pattern for a timeline master.
type Rule struct {
	Frequency Frequency
	Interval  int
	End       EndCondition
	// Weekdays filters weekly rules to specific days. When empty, a weekly
	// rule matches the start date's weekday. Ignored for other frequencies.
	Weekdays []time.Weekday
}

// NewRule constructs a Rule, clamping the interval to at least 1.
func NewRule(frequency Frequency, interval int, end EndCondition, weekdays ...time.Weekday) Rule {
	if interval < 1 {
		interval = 1
	}
	if end.Type == "" {
		end = Forever()
	}
	return Rule{
		Frequency: frequency,
		Interval:  interval,
		End:       end,
		Weekdays:  weekdays,
	}
}

// interval returns the clamped repeat interval for rules built without NewRule.
func (r Rule) interval() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}

// Triggers reports whether date is an occurrence of the rule anchored at start.
//
// Dates before the calendar day containing start never trigger. An EndUntil
// bound is enforced here; an EndCount bound is not (see EndCount).
func (r Rule) Triggers(date, start time.Time, cal calendar.Calendar) bool {
	if date.Before(cal.StartOfDay(start)) {
		return false
	}
	if r.End.Type == EndUntil && date.After(r.End.Date) {
		return false
	}

	interval := r.interval()
	switch r.Frequency {
	case FrequencyMinutely:
		minutes := cal.MinutesBetween(start, date)
		return minutes >= 0 && minutes%interval == 0
	case FrequencyHourly:
		hours := cal.HoursBetween(start, date)
		return hours >= 0 && hours%interval == 0
	case FrequencyDaily:
		days := cal.DaysBetween(start, date)
		return days >= 0 && days%interval == 0
	case FrequencyWeekly:
		if !r.matchesWeekday(date, start, cal) {
			return false
		}
		weeks := cal.WeeksBetween(start, date)
		return weeks >= 0 && weeks%interval == 0
	case FrequencyMonthly:
		months := cal.MonthsBetween(start, date)
		if months < 0 || months%interval != 0 {
			return false
		}
		// Exact day-of-month match: a rule anchored on the 31st silently
		// skips months that are too short.
		return dayOfMonth(date, cal) == dayOfMonth(start, cal)
	case FrequencyYearly:
		years := cal.YearsBetween(start, date)
		if years < 0 || years%interval != 0 {
			return false
		}
		return monthOf(date, cal) == monthOf(start, cal) && dayOfMonth(date, cal) == dayOfMonth(start, cal)
	default:
		return false
	}
}

func (r Rule) matchesWeekday(date, start time.Time, cal calendar.Calendar) bool {
	weekday := date.In(cal.Location()).Weekday()
	if len(r.Weekdays) == 0 {
		return weekday == start.In(cal.Location()).Weekday()
	}
	for _, day := range r.Weekdays {
		if day == weekday {
			return true
		}
	}
	return false
}

// nextOccurrenceSearchDays bounds the forward scan in NextOccurrence. Rules
// with gaps longer than a year report no upcoming occurrence rather than
// scanning indefinitely.
const nextOccurrenceSearchDays = 365

// NextOccurrence scans forward day by day for the first occurrence strictly
// after the given instant, preserving start's time of day. The search is
// bounded; ok is false when nothing triggers within the bound.
func (r Rule) NextOccurrence(after, start time.Time, cal calendar.Calendar) (next time.Time, ok bool) {
	candidate := cal.Combine(after, start)
	if !candidate.After(after) {
		candidate = cal.Combine(cal.AddDays(candidate, 1), start)
	}

	for i := 0; i < nextOccurrenceSearchDays; i++ {
		if r.Triggers(candidate, start, cal) {
			return candidate, true
		}
		candidate = cal.Combine(cal.AddDays(candidate, 1), start)
	}
	return time.Time{}, false
}

func dayOfMonth(t time.Time, cal calendar.Calendar) int {
	return t.In(cal.Location()).Day()
}

func monthOf(t time.Time, cal calendar.Calendar) time.Month {
	return t.In(cal.Location()).Month()
}
