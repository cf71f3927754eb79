// Package planning holds the in-memory slot selections for a shop week and
// the operations that mutate them.
package planning

import (
	"errors"
	"fmt"
	"time"

	"semainier/internal/timegrid"
)

// ErrInvalidSelection is returned when a selection vector does not line up
// with the current grid.
var ErrInvalidSelection = errors.New("invalid selection")

// DateFormat is the calendar-day key format used throughout storage.
const DateFormat = "2006-01-02"

// DaysPerWeek is the number of calendar days in a week snapshot.
const DaysPerWeek = 7

// Vector is one employee's slot selection for one day, aligned position by
// position with the grid's slot list.
type Vector []bool

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	return append(Vector(nil), v...)
}

// Count returns the number of selected slots.
func (v Vector) Count() int {
	n := 0
	for _, b := range v {
		if b {
			n++
		}
	}
	return n
}

// Zero unselects every slot in place.
func (v Vector) Zero() {
	for i := range v {
		v[i] = false
	}
}

// Equal reports whether two vectors hold the same selections.
func (v Vector) Equal(other Vector) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}

// WeekSnapshot maps employee → calendar day (yyyy-MM-dd) → selection vector.
// Entries appear lazily on first write; this is also the persisted JSON shape.
type WeekSnapshot map[string]map[string]Vector

// Clone deep-copies the snapshot.
func (s WeekSnapshot) Clone() WeekSnapshot {
	out := make(WeekSnapshot, len(s))
	for employee, days := range s {
		copied := make(map[string]Vector, len(days))
		for date, v := range days {
			copied[date] = v.Clone()
		}
		out[employee] = copied
	}
	return out
}

// Vector returns the stored vector for an employee and day, or nil when the
// entry does not exist.
func (s WeekSnapshot) Vector(employee, date string) Vector {
	days, ok := s[employee]
	if !ok {
		return nil
	}
	return days[date]
}

// SetVector writes a copy of v under (employee, date), creating the
// employee's day map when absent.
func (s WeekSnapshot) SetVector(employee, date string, v Vector) {
	days, ok := s[employee]
	if !ok {
		days = make(map[string]Vector)
		s[employee] = days
	}
	days[date] = v.Clone()
}

// Toggle flips one slot for an employee on a day, creating the vector lazily.
func (s WeekSnapshot) Toggle(grid *timegrid.Grid, employee, date string, slot string) error {
	idx := grid.Index(slot)
	if idx < 0 {
		return fmt.Errorf("%w: slot %q not in grid", ErrInvalidSelection, slot)
	}
	v := s.Vector(employee, date)
	if v == nil {
		v = make(Vector, grid.Len())
	}
	if len(v) != grid.Len() {
		return fmt.Errorf("%w: vector length %d, grid length %d", ErrInvalidSelection, len(v), grid.Len())
	}
	v[idx] = !v[idx]
	s.SetVector(employee, date, v)
	return nil
}

// ResetDay zeroes (not removes) an employee's vector for one day.
func (s WeekSnapshot) ResetDay(employee, date string) {
	if v := s.Vector(employee, date); v != nil {
		v.Zero()
	}
}

// ResetWeek zeroes every stored vector in the snapshot.
func (s WeekSnapshot) ResetWeek() {
	for _, days := range s {
		for _, v := range days {
			v.Zero()
		}
	}
}

// RemoveEmployee drops all of an employee's day selections.
func (s WeekSnapshot) RemoveEmployee(employee string) {
	delete(s, employee)
}

// SelectedSlots translates an employee's day vector into the grid's slot
// labels, in grid order.
func (s WeekSnapshot) SelectedSlots(grid *timegrid.Grid, employee, date string) ([]string, error) {
	v := s.Vector(employee, date)
	if v == nil {
		return nil, nil
	}
	if len(v) != grid.Len() {
		return nil, fmt.Errorf("%w: vector length %d, grid length %d", ErrInvalidSelection, len(v), grid.Len())
	}
	var selected []string
	for i, on := range v {
		if on {
			selected = append(selected, grid.Slots[i])
		}
	}
	return selected, nil
}

// Validate checks every stored vector against the grid length.
func (s WeekSnapshot) Validate(grid *timegrid.Grid) error {
	for employee, days := range s {
		for date, v := range days {
			if len(v) != grid.Len() {
				return fmt.Errorf("%w: %s %s has %d slots, grid has %d",
					ErrInvalidSelection, employee, date, len(v), grid.Len())
			}
		}
	}
	return nil
}

// Reconcile re-shapes every vector from oldGrid to newGrid, carrying over the
// selection of every slot label present in both grids and defaulting new
// positions to unselected. Run whenever the grid configuration changes.
func (s WeekSnapshot) Reconcile(oldGrid, newGrid *timegrid.Grid) {
	for _, days := range s {
		for date, v := range days {
			fresh := make(Vector, newGrid.Len())
			for i, slot := range newGrid.Slots {
				j := oldGrid.Index(slot)
				if j >= 0 && j < len(v) {
					fresh[i] = v[j]
				}
			}
			days[date] = fresh
		}
	}
}

// WeekDates lists the seven calendar days starting at weekStart.
func WeekDates(weekStart string) ([]string, error) {
	start, err := time.Parse(DateFormat, weekStart)
	if err != nil {
		return nil, fmt.Errorf("parse week start: %w", err)
	}
	dates := make([]string, DaysPerWeek)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i).Format(DateFormat)
	}
	return dates, nil
}
