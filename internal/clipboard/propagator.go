// Package clipboard implements the copy/paste propagation of slot selections
// across employees, days and saved weeks.
package clipboard

import (
	"errors"
	"fmt"

	"semainier/internal/planning"
	"semainier/internal/timegrid"
)

// Mode selects what a copy captures and how a paste applies it.
type Mode string

const (
	// ModeAll copies every employee's day vector.
	ModeAll Mode = "all"
	// ModeIndividual copies one employee's day vector.
	ModeIndividual Mode = "individual"
	// ModeEmployeeToEmployee copies one employee's day vector to be written
	// under another employee.
	ModeEmployeeToEmployee Mode = "employeeToEmployee"
	// ModeWeek copies an entire week snapshot.
	ModeWeek Mode = "week"
)

var (
	// ErrMissingSelection is returned when a copy lacks its required source
	// or target employee.
	ErrMissingSelection = errors.New("missing employee selection")

	// ErrMissingTargets is returned when a paste names no target day.
	ErrMissingTargets = errors.New("no target day selected")

	// ErrEmptyBuffer is returned when a paste runs without a prior copy.
	ErrEmptyBuffer = errors.New("copy buffer is empty")
)

// Buffer is the transient payload captured by a copy. It lives for the
// duration of one copy→paste action.
type Buffer struct {
	Mode           Mode                       `json:"mode"`
	SourceDate     string                     `json:"source_date,omitempty"`
	SourceWeek     string                     `json:"source_week,omitempty"`
	SourceEmployee string                     `json:"source_employee,omitempty"`
	TargetEmployee string                     `json:"target_employee,omitempty"`
	Vectors        map[string]planning.Vector `json:"vectors,omitempty"`
	Week           planning.WeekSnapshot      `json:"week,omitempty"`
}

// DayCopyRequest describes a day-scoped copy.
type DayCopyRequest struct {
	Mode           Mode
	SourceDate     string
	SourceEmployee string
	TargetEmployee string
	// Employees is the shop roster, used by ModeAll to capture every vector.
	Employees []string
}

// CopyDay captures the requested day vectors into a new buffer. An employee
// with no entry on the source day is captured as an all-unselected vector of
// grid length, so a later paste is a deterministic full overwrite.
func CopyDay(snap planning.WeekSnapshot, grid *timegrid.Grid, req DayCopyRequest) (*Buffer, error) {
	buf := &Buffer{
		Mode:           req.Mode,
		SourceDate:     req.SourceDate,
		SourceEmployee: req.SourceEmployee,
		TargetEmployee: req.TargetEmployee,
		Vectors:        make(map[string]planning.Vector),
	}

	capture := func(employee string) planning.Vector {
		if v := snap.Vector(employee, req.SourceDate); v != nil {
			return v.Clone()
		}
		return make(planning.Vector, grid.Len())
	}

	switch req.Mode {
	case ModeAll:
		for _, employee := range req.Employees {
			buf.Vectors[employee] = capture(employee)
		}
	case ModeIndividual:
		if req.SourceEmployee == "" {
			return nil, fmt.Errorf("%w: source employee required", ErrMissingSelection)
		}
		buf.Vectors[req.SourceEmployee] = capture(req.SourceEmployee)
	case ModeEmployeeToEmployee:
		if req.SourceEmployee == "" {
			return nil, fmt.Errorf("%w: source employee required", ErrMissingSelection)
		}
		if req.TargetEmployee == "" {
			return nil, fmt.Errorf("%w: target employee required", ErrMissingSelection)
		}
		// The captured vector is remapped to the target employee on paste.
		buf.Vectors[req.TargetEmployee] = capture(req.SourceEmployee)
	default:
		return nil, fmt.Errorf("unknown copy mode: %s", req.Mode)
	}

	return buf, nil
}

// PasteDay applies a day buffer onto every target day. Only the employees
// captured in the buffer and the named days are touched. Re-applying the same
// buffer to the same targets is a no-op the second time. A buffer captured
// under a different grid is rejected before anything is written.
func PasteDay(snap planning.WeekSnapshot, grid *timegrid.Grid, buf *Buffer, targetDates []string) error {
	if buf == nil || len(buf.Vectors) == 0 {
		return ErrEmptyBuffer
	}
	if buf.Mode == ModeWeek {
		return fmt.Errorf("%w: week buffer cannot day-paste", ErrEmptyBuffer)
	}
	if len(targetDates) == 0 {
		return ErrMissingTargets
	}
	for employee, v := range buf.Vectors {
		if len(v) != grid.Len() {
			return fmt.Errorf("%w: buffer vector for %s has %d slots, grid has %d",
				planning.ErrInvalidSelection, employee, len(v), grid.Len())
		}
	}

	for _, date := range targetDates {
		for employee, v := range buf.Vectors {
			snap.SetVector(employee, date, v)
		}
	}
	return nil
}

// CopyWeek captures a whole week snapshot.
func CopyWeek(snap planning.WeekSnapshot, sourceWeek string) *Buffer {
	return &Buffer{
		Mode:       ModeWeek,
		SourceWeek: sourceWeek,
		Week:       snap.Clone(),
	}
}

// PasteWeek returns the destination week's new snapshot: a full replace of
// the captured week, never a merge. Employees present only in the destination
// end up with no vectors at all. Callers must run the two-phase confirmation
// (see Session) before committing the result. A week captured under a
// different grid is rejected.
func PasteWeek(buf *Buffer, grid *timegrid.Grid) (planning.WeekSnapshot, error) {
	if buf == nil || buf.Mode != ModeWeek || buf.Week == nil {
		return nil, ErrEmptyBuffer
	}
	if err := buf.Week.Validate(grid); err != nil {
		return nil, err
	}
	return buf.Week.Clone(), nil
}
