package recurrence

import (
	"errors"
	"fmt"
	"time"
)

// Pattern is the supported set of recurrence intervals for a work.
type Pattern string

const (
	PatternMonthly    Pattern = "monthly"
	PatternQuarterly  Pattern = "quarterly"
	PatternHalfYearly Pattern = "half_yearly"
	PatternYearly     Pattern = "yearly"
)

// ErrUnknownPattern is returned when a pattern value is not one of the four
// recognized intervals.
var ErrUnknownPattern = errors.New("unknown recurrence pattern")

// ParsePattern validates a raw pattern string at the boundary.
func ParsePattern(raw string) (Pattern, error) {
	p := Pattern(raw)
	if _, ok := patternMonths[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPattern, raw)
	}
	return p, nil
}

var patternMonths = map[Pattern]int{
	PatternMonthly:    1,
	PatternQuarterly:  3,
	PatternHalfYearly: 6,
	PatternYearly:     12,
}

// NextDueDate advances current by one pattern unit and anchors the result to
// day-of-month, clamped to the last valid day of the target month (anchor 31
// in February yields the 28th or 29th).
func NextDueDate(current time.Time, pattern Pattern, day int) (time.Time, error) {
	months, ok := patternMonths[pattern]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownPattern, pattern)
	}
	// First-of-month base avoids the AddDate rollover (Jan 31 + 1 month = Mar 3).
	base := time.Date(current.Year(), current.Month(), 1, 0, 0, 0, 0, current.Location())
	target := base.AddDate(0, months, 0)
	return anchorDay(target, day), nil
}

// BootstrapDueDate anchors day into the month containing now. It seeds the
// first period of a work that has none yet.
func BootstrapDueDate(now time.Time, day int) time.Time {
	return anchorDay(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), day)
}

// anchorDay sets the day-of-month on the month of t, clamped to month length.
func anchorDay(t time.Time, day int) time.Time {
	if day < 1 {
		day = 1
	}
	if last := daysInMonth(t.Year(), t.Month()); day > last {
		day = last
	}
	return time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// PeriodBounds computes the calendar span containing due and a display label
// for it. The span depends only on the pattern, never on the anchor day:
// full month for monthly, quarter for quarterly, half-year for half_yearly
// and the full year for yearly.
func PeriodBounds(due time.Time, pattern Pattern) (start, end time.Time, name string, err error) {
	year := due.Year()
	loc := due.Location()

	switch pattern {
	case PatternMonthly:
		start = time.Date(year, due.Month(), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, -1)
		name = start.Format("January 2006")
	case PatternQuarterly:
		q := (int(due.Month()) - 1) / 3
		start = time.Date(year, time.Month(q*3+1), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 3, -1)
		name = fmt.Sprintf("Q%d %d", q+1, year)
	case PatternHalfYearly:
		h := (int(due.Month()) - 1) / 6
		start = time.Date(year, time.Month(h*6+1), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 6, -1)
		name = fmt.Sprintf("H%d %d", h+1, year)
	case PatternYearly:
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		end = time.Date(year, time.December, 31, 0, 0, 0, 0, loc)
		name = fmt.Sprintf("%d", year)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownPattern, pattern)
	}
	return start, end, name, err
}
