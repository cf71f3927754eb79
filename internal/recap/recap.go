// Package recap derives arrival/break/departure summaries and worked-hour
// totals from grouped work segments.
package recap

import (
	"errors"
	"fmt"

	"semainier/internal/segments"
	"semainier/internal/timegrid"
)

var (
	// ErrMissingConfig is returned when a recap is requested without a grid interval.
	ErrMissingConfig = errors.New("missing grid config")

	// ErrTooManySegments is returned for days with more than two breaks. The
	// fixed column schema renders at most three segments; the data is kept,
	// never dropped, and the caller decides how to surface it.
	ErrTooManySegments = errors.New("too many segments for recap")
)

// MaxSegments is the number of work segments the recap schema can render.
const MaxSegments = 3

// Day is the human-readable summary of one employee's day. A slot label marks
// the start of an occupied interval, so every boundary on the right side of a
// segment is advanced by one interval. Zero-value means no work that day.
type Day struct {
	Arrival     string  `json:"arrival,omitempty"`
	Exit1       string  `json:"exit1,omitempty"`
	Return1     string  `json:"return1,omitempty"`
	Exit2       string  `json:"exit2,omitempty"`
	Return2     string  `json:"return2,omitempty"`
	Departure   string  `json:"departure,omitempty"`
	HoursWorked float64 `json:"hours_worked"`
}

// Empty reports whether the day holds no work at all.
func (d Day) Empty() bool {
	return d.Arrival == "" && d.HoursWorked == 0
}

// ComputeDay builds the summary for one day from its segments.
func ComputeDay(segs []segments.Segment, intervalMinutes int) (Day, error) {
	if intervalMinutes <= 0 {
		return Day{}, fmt.Errorf("%w: interval %d", ErrMissingConfig, intervalMinutes)
	}
	if len(segs) == 0 {
		return Day{}, nil
	}
	if len(segs) > MaxSegments {
		return Day{}, fmt.Errorf("%w: %d segments", ErrTooManySegments, len(segs))
	}

	var d Day
	d.Arrival = segs[0].Start()

	last := segs[len(segs)-1]
	d.Departure = timegrid.AddMinutes(last.Last(), intervalMinutes)

	if len(segs) >= 2 {
		d.Exit1 = timegrid.AddMinutes(segs[0].Last(), intervalMinutes)
		d.Return1 = segs[1].Start()
	}
	if len(segs) == 3 {
		d.Exit2 = timegrid.AddMinutes(segs[1].Last(), intervalMinutes)
		d.Return2 = segs[2].Start()
	}

	total := 0
	for _, seg := range segs {
		total += seg.Count()
	}
	d.HoursWorked = float64(total*intervalMinutes) / 60

	return d, nil
}

// WeekEntry pairs a calendar day (yyyy-MM-dd) with its recap.
type WeekEntry struct {
	Date string `json:"date"`
	Day  Day    `json:"day"`
}

// Week is one employee's recap over a week: per-day breakdown plus the hour
// total. Only hours are summed; segment boundaries are per-day facts.
type Week struct {
	Employee   string      `json:"employee"`
	Entries    []WeekEntry `json:"entries"`
	TotalHours float64     `json:"total_hours"`
}

// ComputeWeek aggregates daily recaps for one employee. Totals keep full
// float precision; rounding happens only in FormatHours.
func ComputeWeek(employee string, entries []WeekEntry) Week {
	w := Week{Employee: employee, Entries: entries}
	for _, e := range entries {
		w.TotalHours += e.Day.HoursWorked
	}
	return w
}

// TeamRow is one employee's recap inside a team view.
type TeamRow struct {
	Employee string `json:"employee"`
	Day      Day    `json:"day"`
}

// TeamDay assembles the whole-team view for one day, in the caller-supplied
// employee order. Employees without a recap get an empty row; zero-hour rows
// stay in the result, the presentation layer decides whether to hide them.
func TeamDay(order []string, byEmployee map[string]Day) []TeamRow {
	rows := make([]TeamRow, 0, len(order))
	for _, name := range order {
		rows = append(rows, TeamRow{Employee: name, Day: byEmployee[name]})
	}
	return rows
}

// FormatHours renders an hour total rounded to one decimal digit.
func FormatHours(hours float64) string {
	return fmt.Sprintf("%.1f", hours)
}
