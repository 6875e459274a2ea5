package report

import (
	"fmt"
	"time"
)

// maxWeeksPerMonth caps the calendar windows generated for one month.
const maxWeeksPerMonth = 5

// Week is one Monday-aligned calendar window inside a month. Start may fall
// in the previous month when the 1st is not a Monday; End of the final
// window is clamped to the month's last day.
type Week struct {
	Number int       `json:"week"`
	Label  string    `json:"label"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// WeeksOfMonth computes the Monday-aligned week windows covering a month.
// monthIndex is 0-based (0 = January). At most five windows are produced.
func WeeksOfMonth(year, monthIndex int) []Week {
	month := time.Month(monthIndex + 1)
	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstDay.AddDate(0, 1, -1)
	monthEnd := endOfDay(lastDay)

	// Monday on or before the 1st; no shift when the 1st is a Monday.
	start := firstDay
	for start.Weekday() != time.Monday {
		start = start.AddDate(0, 0, -1)
	}

	weeks := make([]Week, 0, maxWeeksPerMonth)
	for n := 1; n <= maxWeeksPerMonth && !start.After(lastDay); n++ {
		end := endOfDay(start.AddDate(0, 0, 6))
		if end.After(monthEnd) {
			end = monthEnd
		}
		weeks = append(weeks, Week{
			Number: n,
			Label:  fmt.Sprintf("Week %d", n),
			Start:  start,
			End:    end,
		})
		start = start.AddDate(0, 0, 7)
	}

	return weeks
}

// WeekOf returns the window containing t, or false when t falls outside
// every generated window.
func WeekOf(weeks []Week, t time.Time) (Week, bool) {
	for _, w := range weeks {
		if !t.Before(w.Start) && !t.After(w.End) {
			return w, true
		}
	}
	return Week{}, false
}

func endOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999*int(time.Millisecond), d.Location())
}
