package recurrence

import (
	"testing"
	"time"

	"github.com/example/timeline-scheduler/internal/calendar"
)

func utcCalendar() calendar.Calendar {
	return calendar.New(time.UTC, time.Monday)
}

func date(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func TestRule_RejectsDatesBeforeStart(t *testing.T) {
	t.Parallel()

	cal := utcCalendar()
	start := date(2025, time.March, 10, 9)
	rule := NewRule(FrequencyDaily, 1, Forever())

	if rule.Triggers(date(2025, time.March, 9, 9), start, cal) {
		t.Fatal("expected no trigger the day before the start date")
	}
	// The same day triggers even earlier in the day: the cutoff is the start
	// date's day boundary, not the start instant.
	if !rule.Triggers(date(2025, time.March, 10, 6), start, cal) {
		t.Fatal("expected trigger on the start day before the start instant")
	}
}

func TestRule_DailyIntervalMatchesMultiplesOnly(t *testing.T) {
	t.Parallel()

	cal := utcCalendar()
	start := date(2025, time.January, 1, 8)
	rule := NewRule(FrequencyDaily, 3, Forever())

	for offset := 0; offset <= 12; offset++ {
		got := rule.Triggers(date(2025, time.January, 1+offset, 8), start, cal)
		want := offset%3 == 0
		if got != want {
			t.Fatalf("day offset %d: triggers = %v, want %v", offset, got, want)
		}
	}
}

func TestRule_IntervalClampsToOne(t *testing.T) {
	t.Parallel()

	cal := utcCalendar()
	start := date(2025, time.January, 1, 8)
	rule := NewRule(FrequencyDaily, 0, Forever())

	if rule.Interval != 1 {
		t.Fatalf("expected interval clamped to 1, got %d", rule.Interval)
	}
	if !rule.Triggers(date(2025, time.January, 2, 8), start, cal) {
		t.Fatal("expected a clamped daily rule to trigger every day")
	}
}

func TestRule_UntilBoundIsInclusive(t *testing.T) {
	t.Parallel()

	cal := utcCalendar()
	start := date(2025, time.January, 1, 8)
	until := date(2025, time.January, 5, 8)
	rule := NewRule(FrequencyDaily, 1, Until(until))

	if !rule.Triggers(until, start, cal) {
		t.Fatal("expected trigger on the until date itself")
	}
	if rule.Triggers(date(2025, time.January, 6, 8), start, cal) {
		t.Fatal("expected no trigger after the until date")
	}
}

func TestRule_CountBoundIsAdvisoryOnly(t *testing.T) {
	t.Parallel()

	// The count end condition carries no firing history, so Triggers keeps
	// matching far past the advertised count. Enforcement is the caller's
	// responsibility.
	cal := utcCalendar()
	start := date(2025, time.January, 1, 8)
	rule := NewRule(FrequencyDaily, 1, Count(5))

	if !rule.Triggers(date(2025, time.March, 1, 8), start, cal) {
		t.Fatal("expected a count-bounded rule to keep triggering past its count")
	}
}

func TestRule_WeeklyHonorsWeekdaySet(t *testing.T) {
	t.Parallel()

	cal := utcCalendar()
	// 2025-01-06 is a Monday.
	start := date(2025, time.January, 6, 7)
	rule := NewRule(FrequencyWeekly, 1, Forever(), time.Monday, time.Friday)

	cases := []struct {
		day  int
		want bool
	}{
		{6, true},   // Monday
		{7, false},  // Tuesday
		{10, true},  // Friday
		{11, false}, // Saturday
		{13, true},  // next Monday
	}
	for _, tc := range cases {
		if got := rule.Triggers(date(2025, time.January, tc.day, 7), start, cal); got != tc.want {
			t.Fatalf("2025-01-%02d: triggers = %v, want %v", tc.day, got, tc.want)
		}
	}
}

func TestRule_WeeklyDefaultsToStartWeekday(t *testing.T) {
	t.Parallel()

	cal := utcCalendar()
	// 2025-01-08 is a Wednesday.
	start := date(2025, time.January, 8, 7)
	rule := NewRule(FrequencyWeekly, 1, Forever())

	if !rule.Triggers(date(2025, time.January, 15, 7), start, cal) {
		t.Fatal("expected trigger on the start weekday the following week")
	}
	if rule.Triggers(date(2025, time.January, 16, 7), start, cal) {
		t.Fatal("expected no trigger on a different weekday")
	}
}

func TestRule_BiweeklySundaySkipsAlternateWeeks(t *testing.T) {
	t.Parallel()

	cal := calendar.New(time.UTC, time.Sunday)
	// 2025-01-05 is a Sunday.
	start := date(2025, time.January, 5, 10)
	rule := NewRule(FrequencyWeekly, 2, Forever(), time.Sunday)

	if !rule.Triggers(start, start, cal) {
		t.Fatal("expected trigger on the starting Sunday")
	}
	if rule.Triggers(date(2025, time.January, 12, 10), start, cal) {
		t.Fatal("expected no trigger on the next Sunday")
	}
	if !rule.Triggers(date(2025, time.January, 19, 10), start, cal) {
		t.Fatal("expected trigger two weeks after the start")
	}
}

func TestRule_MonthlyRequiresExactDayOfMonth(t *testing.T) {
	t.Parallel()

	cal := utcCalendar()
	start := date(2025, time.January, 31, 9)
	rule := NewRule(FrequencyMonthly, 1, Forever())

	// February has no 31st; the rule silently skips short months rather than
	// clamping to their last day.
	if rule.Triggers(date(2025, time.February, 28, 9), start, cal) {
		t.Fatal("expected no trigger on February 28 for a rule anchored on the 31st")
	}
	if !rule.Triggers(date(2025, time.March, 31, 9), start, cal) {
		t.Fatal("expected trigger on March 31")
	}
}

func TestRule_MonthlyIntervalCountsMonths(t *testing.T) {
	t.Parallel()

	cal := utcCalendar()
	start := date(2025, time.January, 15, 9)
	rule := NewRule(FrequencyMonthly, 2, Forever())

	if rule.Triggers(date(2025, time.February, 15, 9), start, cal) {
		t.Fatal("expected no trigger one month after the start")
	}
	if !rule.Triggers(date(2025, time.March, 15, 9), start, cal) {
		t.Fatal("expected trigger two months after the start")
	}
}

func TestRule_YearlyMatchesMonthAndDay(t *testing.T) {
	t.Parallel()

	cal := utcCalendar()
	start := date(2024, time.June, 10, 12)
	rule := NewRule(FrequencyYearly, 1, Forever())

	if !rule.Triggers(date(2026, time.June, 10, 12), start, cal) {
		t.Fatal("expected trigger on the anniversary")
	}
	if rule.Triggers(date(2026, time.June, 11, 12), start, cal) {
		t.Fatal("expected no trigger the day after the anniversary")
	}
	if rule.Triggers(date(2026, time.July, 10, 12), start, cal) {
		t.Fatal("expected no trigger in a different month")
	}
}

func TestRule_MinutelyAndHourlyMeasureFromStartInstant(t *testing.T) {
	t.Parallel()

	cal := utcCalendar()
	start := time.Date(2025, time.April, 1, 9, 30, 0, 0, time.UTC)

	minutely := NewRule(FrequencyMinutely, 45, Forever())
	if !minutely.Triggers(start.Add(90*time.Minute), start, cal) {
		t.Fatal("expected minutely trigger at a 45-minute multiple")
	}
	if minutely.Triggers(start.Add(91*time.Minute), start, cal) {
		t.Fatal("expected no minutely trigger off the multiple")
	}

	hourly := NewRule(FrequencyHourly, 6, Forever())
	if !hourly.Triggers(start.Add(12*time.Hour), start, cal) {
		t.Fatal("expected hourly trigger at a 6-hour multiple")
	}
	if hourly.Triggers(start.Add(13*time.Hour), start, cal) {
		t.Fatal("expected no hourly trigger off the multiple")
	}
}

func TestRule_UnspecifiedFrequencyNeverTriggers(t *testing.T) {
	t.Parallel()

	cal := utcCalendar()
	start := date(2025, time.January, 1, 8)
	rule := Rule{Interval: 1}

	if rule.Triggers(start, start, cal) {
		t.Fatal("expected no trigger for an unspecified frequency")
	}
}

func TestRule_NextOccurrenceScansForward(t *testing.T) {
	t.Parallel()

	cal := utcCalendar()
	start := date(2025, time.January, 1, 8)
	rule := NewRule(FrequencyDaily, 7, Forever())

	next, ok := rule.NextOccurrence(date(2025, time.January, 2, 12), start, cal)
	if !ok {
		t.Fatal("expected an occurrence within the search bound")
	}
	if want := date(2025, time.January, 8, 8); !next.Equal(want) {
		t.Fatalf("expected next occurrence %v, got %v", want, next)
	}
}

func TestRule_NextOccurrenceRespectsSearchBound(t *testing.T) {
	t.Parallel()

	cal := utcCalendar()
	start := date(2025, time.January, 1, 8)
	// Ends before the search window begins, so nothing ever triggers.
	rule := NewRule(FrequencyDaily, 1, Until(date(2025, time.January, 31, 8)))

	if _, ok := rule.NextOccurrence(date(2025, time.June, 1, 0), start, cal); ok {
		t.Fatal("expected no occurrence for an expired rule")
	}
}
