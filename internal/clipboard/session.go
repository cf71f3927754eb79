package clipboard

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// State tracks where a copy/paste action stands. One action runs at a time;
// a new copy discards whatever came before.
type State string

const (
	StateIdle            State = "idle"
	StateSourceSelected  State = "source_selected"
	StateTargetsSelected State = "targets_selected"
	StateApplied         State = "applied"
)

// ErrNoPendingPaste is returned when a week-paste confirmation does not match
// a prepared operation.
var ErrNoPendingPaste = errors.New("no matching pending week paste")

// PendingWeekPaste is a prepared, not yet committed, destructive week paste.
// The ID must be echoed back by the confirmation step.
type PendingWeekPaste struct {
	ID         string
	TargetWeek string
}

// Session is the per-user copy/paste state machine:
// Idle → SourceSelected → TargetsSelected → Applied.
type Session struct {
	mu      sync.Mutex
	state   State
	buffer  *Buffer
	pending *PendingWeekPaste
}

// NewSession starts an idle session.
func NewSession() *Session {
	return &Session{state: StateIdle}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetBuffer records a successful copy and moves to SourceSelected.
func (s *Session) SetBuffer(buf *Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = buf
	s.pending = nil
	s.state = StateSourceSelected
}

// Buffer returns the captured buffer, or ErrEmptyBuffer before any copy.
func (s *Session) Buffer() (*Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffer == nil {
		return nil, ErrEmptyBuffer
	}
	return s.buffer, nil
}

// MarkTargets notes that paste targets were chosen.
func (s *Session) MarkTargets() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSourceSelected {
		s.state = StateTargetsSelected
	}
}

// MarkApplied notes a committed paste. The buffer stays usable so the same
// copy can be pasted again.
func (s *Session) MarkApplied() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateApplied
}

// PrepareWeekPaste stages a destructive week paste and returns the pending
// operation the caller must confirm. Fails unless a week buffer was copied.
func (s *Session) PrepareWeekPaste(targetWeek string) (*PendingWeekPaste, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffer == nil || s.buffer.Mode != ModeWeek {
		return nil, ErrEmptyBuffer
	}
	s.pending = &PendingWeekPaste{ID: uuid.New().String(), TargetWeek: targetWeek}
	s.state = StateTargetsSelected
	return s.pending, nil
}

// ConfirmWeekPaste checks the confirmation against the staged operation and
// hands back the buffer to apply. The pending operation is consumed.
func (s *Session) ConfirmWeekPaste(id string) (*Buffer, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil || s.pending.ID != id {
		return nil, "", ErrNoPendingPaste
	}
	target := s.pending.TargetWeek
	s.pending = nil
	return s.buffer, target, nil
}

// Reset discards the buffer and any pending paste.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = nil
	s.pending = nil
	s.state = StateIdle
}
