// Package timegrid derives the ordered list of selectable time slots for a day.
package timegrid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidConfig is returned when the grid configuration is unusable.
var ErrInvalidConfig = errors.New("invalid grid config")

// OvernightThreshold is the clock time below which a slot belongs to the
// calendar day after the nominal schedule day.
const OvernightThreshold = "06:00"

// AllowedIntervals are the supported slot durations in minutes.
var AllowedIntervals = []int{15, 30, 60}

// Config describes how to build a grid.
type Config struct {
	IntervalMinutes int    `yaml:"interval_minutes" json:"interval_minutes"`
	StartTime       string `yaml:"start_time" json:"start_time"` // "10:00"
	EndTime         string `yaml:"end_time" json:"end_time"`     // "22:00" or "02:00" (overnight)
}

// Grid is the immutable ordered list of slot start times for one schedule day.
type Grid struct {
	Interval int
	Slots    []string
}

// Build generates the grid: starting at StartTime, step by IntervalMinutes
// until reaching (not exceeding) the resolved EndTime. An end time at or
// before the overnight threshold is resolved to the following calendar day.
func Build(cfg Config) (*Grid, error) {
	if !isAllowedInterval(cfg.IntervalMinutes) {
		return nil, fmt.Errorf("%w: interval %d minutes", ErrInvalidConfig, cfg.IntervalMinutes)
	}

	ref := referenceDay()
	start, err := ResolveMomentStrict(cfg.StartTime, ref, false)
	if err != nil {
		return nil, fmt.Errorf("%w: start time %q", ErrInvalidConfig, cfg.StartTime)
	}
	end, err := ResolveMomentStrict(cfg.EndTime, ref, false)
	if err != nil {
		return nil, fmt.Errorf("%w: end time %q", ErrInvalidConfig, cfg.EndTime)
	}
	// An end time at or before the threshold closes the schedule on the
	// following morning.
	if cfg.EndTime <= OvernightThreshold {
		end = end.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end %s not after start %s", ErrInvalidConfig, cfg.EndTime, cfg.StartTime)
	}

	step := time.Duration(cfg.IntervalMinutes) * time.Minute
	var slots []string
	for cursor := start; cursor.Before(end); cursor = cursor.Add(step) {
		slots = append(slots, cursor.Format("15:04"))
	}

	return &Grid{Interval: cfg.IntervalMinutes, Slots: slots}, nil
}

// Len returns the number of slots in the grid.
func (g *Grid) Len() int {
	return len(g.Slots)
}

// Index returns the position of slot in the grid, or -1 when absent.
func (g *Grid) Index(slot string) int {
	for i, s := range g.Slots {
		if s == slot {
			return i
		}
	}
	return -1
}

// Contains reports whether slot is a member of the grid.
func (g *Grid) Contains(slot string) bool {
	return g.Index(slot) >= 0
}

// ResolveMoment anchors a slot label to a concrete timestamp on referenceDay.
// Slots with a clock value before the overnight threshold land on the day
// after referenceDay. This is the single definition of the overnight rule;
// ordering, gap math and departure math all go through it.
func ResolveMoment(slot string, referenceDay time.Time) (time.Time, error) {
	return ResolveMomentStrict(slot, referenceDay, true)
}

// ResolveMomentStrict is ResolveMoment with the overnight shift made optional,
// used by Build where the start time never shifts.
func ResolveMomentStrict(clock string, referenceDay time.Time, shiftOvernight bool) (time.Time, error) {
	h, m, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	t := time.Date(referenceDay.Year(), referenceDay.Month(), referenceDay.Day(), h, m, 0, 0, referenceDay.Location())
	if shiftOvernight && clock < OvernightThreshold {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// Compare orders two slot labels chronologically, overnight-aware: early
// morning slots sort after evening ones. Returns -1, 0 or 1.
func Compare(a, b string) int {
	ka, kb := sortKey(a), sortKey(b)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	default:
		return 0
	}
}

// sortKey prefixes overnight slots so a plain string comparison orders them last.
func sortKey(slot string) string {
	if slot < OvernightThreshold {
		return "1" + slot
	}
	return "0" + slot
}

// AddMinutes advances a slot label by a wall-clock duration, wrapping at
// midnight. The result is a clock label only; callers needing a calendar
// moment go through ResolveMoment.
func AddMinutes(slot string, minutes int) string {
	h, m, err := parseClock(slot)
	if err != nil {
		return slot
	}
	total := (h*60 + m + minutes) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// GapMinutes returns the wall-clock distance from slot a to slot b with the
// overnight shift applied to both.
func GapMinutes(a, b string) (int, error) {
	ref := referenceDay()
	ta, err := ResolveMoment(a, ref)
	if err != nil {
		return 0, err
	}
	tb, err := ResolveMoment(b, ref)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta) / time.Minute), nil
}

func parseClock(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("invalid time format: %s", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour: %s", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute: %s", s)
	}
	return hour, minute, nil
}

func isAllowedInterval(minutes int) bool {
	for _, v := range AllowedIntervals {
		if v == minutes {
			return true
		}
	}
	return false
}

// referenceDay is an arbitrary fixed anchor for duration math; only
// differences between resolved moments matter.
func referenceDay() time.Time {
	return time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
}
