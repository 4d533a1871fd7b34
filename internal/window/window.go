// Package window computes the calendar-aligned date ranges every dashboard
// derivation filters by. All functions take the reference instant explicitly;
// "today" is the calendar date of now in now's own location.
package window

import (
	"time"

	"finboard/internal/core"
)

// DefaultWeekStart is the first day of the week used when none is configured.
const DefaultWeekStart = time.Sunday

const monthLabelLayout = "Jan 2006"

// Window is an inclusive range of calendar dates.
type Window struct {
	Start core.Date
	End   core.Date
	Label string
}

// Contains reports whether d falls within the window, both ends included.
func (w Window) Contains(d core.Date) bool {
	return !d.Before(w.Start.Time) && !d.After(w.End.Time)
}

// Days returns the number of calendar days covered by the window.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start.Time).Hours()/24) + 1
}

// Month returns the window covering the whole of ym.
func Month(ym core.YearMonth) Window {
	return Window{
		Start: ym.FirstDay(),
		End:   ym.LastDay(),
		Label: ym.FirstDay().Format(monthLabelLayout),
	}
}

// CurrentMonth returns the calendar month containing now.
func CurrentMonth(now time.Time) Window {
	return Month(core.YearMonthOf(now))
}

// LastMonth returns the calendar month before the one containing now.
func LastMonth(now time.Time) Window {
	return Month(core.YearMonthOf(now).AddMonths(-1))
}

// CurrentWeek returns the seven-day week containing now, starting on
// weekStart.
func CurrentWeek(now time.Time, weekStart time.Weekday) Window {
	today := core.DateOf(now)
	offset := (int(today.Weekday()) - int(weekStart) + 7) % 7
	start := core.Date{Time: today.AddDate(0, 0, -offset)}
	return Window{
		Start: start,
		End:   core.Date{Time: start.AddDate(0, 0, 6)},
		Label: "Week of " + start.Format("Jan 02"),
	}
}

// TrailingMonths returns n month windows ending with the current month,
// oldest first. n < 1 yields an empty slice.
func TrailingMonths(now time.Time, n int) []Window {
	if n < 1 {
		return []Window{}
	}
	current := core.YearMonthOf(now)
	out := make([]Window, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, Month(current.AddMonths(-i)))
	}
	return out
}

// Span returns the window from the start of the first to the end of the last
// of ws. It returns false when ws is empty.
func Span(ws []Window) (Window, bool) {
	if len(ws) == 0 {
		return Window{}, false
	}
	return Window{
		Start: ws[0].Start,
		End:   ws[len(ws)-1].End,
		Label: ws[0].Label + " - " + ws[len(ws)-1].Label,
	}, true
}

// ParseWeekStart maps a configuration value to a weekday. Only "sunday" and
// "monday" are recognised.
func ParseWeekStart(s string) (time.Weekday, bool) {
	switch s {
	case "sunday", "Sunday", "":
		return time.Sunday, true
	case "monday", "Monday":
		return time.Monday, true
	default:
		return DefaultWeekStart, false
	}
}
