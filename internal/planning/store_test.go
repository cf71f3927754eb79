package planning

import (
	"errors"
	"testing"

	"semainier/internal/timegrid"
)

func mustGrid(t *testing.T, cfg timegrid.Config) *timegrid.Grid {
	t.Helper()
	grid, err := timegrid.Build(cfg)
	if err != nil {
		t.Fatalf("build grid: %v", err)
	}
	return grid
}

func TestToggleCreatesVectorLazily(t *testing.T) {
	grid := mustGrid(t, timegrid.Config{IntervalMinutes: 30, StartTime: "10:00", EndTime: "13:00"})
	snap := make(WeekSnapshot)

	if err := snap.Toggle(grid, "ALICE", "2026-03-02", "10:30"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	v := snap.Vector("ALICE", "2026-03-02")
	if v == nil {
		t.Fatal("vector should exist after toggle")
	}
	if len(v) != grid.Len() {
		t.Fatalf("vector length %d, want %d", len(v), grid.Len())
	}
	if !v[1] {
		t.Error("slot 10:30 should be selected")
	}

	// Toggling again unselects but keeps the vector.
	if err := snap.Toggle(grid, "ALICE", "2026-03-02", "10:30"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if snap.Vector("ALICE", "2026-03-02").Count() != 0 {
		t.Error("second toggle should unselect")
	}
}

func TestToggleUnknownSlot(t *testing.T) {
	grid := mustGrid(t, timegrid.Config{IntervalMinutes: 30, StartTime: "10:00", EndTime: "13:00"})
	snap := make(WeekSnapshot)

	err := snap.Toggle(grid, "ALICE", "2026-03-02", "09:00")
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
	if snap.Vector("ALICE", "2026-03-02") != nil {
		t.Error("failed toggle must not create an entry")
	}
}

func TestSelectedSlots(t *testing.T) {
	grid := mustGrid(t, timegrid.Config{IntervalMinutes: 30, StartTime: "10:00", EndTime: "13:00"})
	snap := make(WeekSnapshot)
	snap.SetVector("ALICE", "2026-03-02", Vector{true, true, false, false, true, false})

	slots, err := snap.SelectedSlots(grid, "ALICE", "2026-03-02")
	if err != nil {
		t.Fatalf("selected slots: %v", err)
	}
	want := []string{"10:00", "10:30", "12:00"}
	if len(slots) != len(want) {
		t.Fatalf("expected %v, got %v", want, slots)
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Errorf("slot %d: expected %s, got %s", i, want[i], slots[i])
		}
	}

	// No entry at all is not an error.
	slots, err = snap.SelectedSlots(grid, "BOB", "2026-03-02")
	if err != nil || slots != nil {
		t.Errorf("missing entry should yield nil, nil; got %v, %v", slots, err)
	}
}

func TestSelectedSlotsShapeMismatch(t *testing.T) {
	grid := mustGrid(t, timegrid.Config{IntervalMinutes: 30, StartTime: "10:00", EndTime: "13:00"})
	snap := make(WeekSnapshot)
	snap.SetVector("ALICE", "2026-03-02", Vector{true, false})

	_, err := snap.SelectedSlots(grid, "ALICE", "2026-03-02")
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestResetDayZeroesWithoutRemoving(t *testing.T) {
	snap := make(WeekSnapshot)
	snap.SetVector("ALICE", "2026-03-02", Vector{true, true, true})

	snap.ResetDay("ALICE", "2026-03-02")

	v := snap.Vector("ALICE", "2026-03-02")
	if v == nil {
		t.Fatal("reset must keep the vector")
	}
	if v.Count() != 0 {
		t.Errorf("reset must zero the vector, got %v", v)
	}
}

func TestRemoveEmployee(t *testing.T) {
	snap := make(WeekSnapshot)
	snap.SetVector("ALICE", "2026-03-02", Vector{true})
	snap.SetVector("BOB", "2026-03-02", Vector{true})

	snap.RemoveEmployee("ALICE")

	if snap.Vector("ALICE", "2026-03-02") != nil {
		t.Error("ALICE should be gone")
	}
	if snap.Vector("BOB", "2026-03-02") == nil {
		t.Error("BOB must be untouched")
	}
}

func TestReconcilePreservesMatchingSlots(t *testing.T) {
	oldGrid := mustGrid(t, timegrid.Config{IntervalMinutes: 30, StartTime: "10:00", EndTime: "13:00"})
	// Grid extended one hour earlier: old selections must survive at their labels.
	newGrid := mustGrid(t, timegrid.Config{IntervalMinutes: 30, StartTime: "09:00", EndTime: "13:00"})

	snap := make(WeekSnapshot)
	snap.SetVector("ALICE", "2026-03-02", Vector{true, false, true, false, false, false}) // 10:00, 11:00

	snap.Reconcile(oldGrid, newGrid)

	v := snap.Vector("ALICE", "2026-03-02")
	if len(v) != newGrid.Len() {
		t.Fatalf("vector length %d, want %d", len(v), newGrid.Len())
	}
	selected, err := snap.SelectedSlots(newGrid, "ALICE", "2026-03-02")
	if err != nil {
		t.Fatalf("selected slots: %v", err)
	}
	if len(selected) != 2 || selected[0] != "10:00" || selected[1] != "11:00" {
		t.Errorf("expected [10:00 11:00], got %v", selected)
	}
}

func TestReconcileDropsVanishedSlots(t *testing.T) {
	oldGrid := mustGrid(t, timegrid.Config{IntervalMinutes: 30, StartTime: "10:00", EndTime: "13:00"})
	newGrid := mustGrid(t, timegrid.Config{IntervalMinutes: 60, StartTime: "10:00", EndTime: "13:00"})

	snap := make(WeekSnapshot)
	snap.SetVector("ALICE", "2026-03-02", Vector{true, true, true, true, true, true})

	snap.Reconcile(oldGrid, newGrid)

	selected, err := snap.SelectedSlots(newGrid, "ALICE", "2026-03-02")
	if err != nil {
		t.Fatalf("selected slots: %v", err)
	}
	// Only labels present in both grids survive.
	want := []string{"10:00", "11:00", "12:00"}
	if len(selected) != len(want) {
		t.Fatalf("expected %v, got %v", want, selected)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	snap := make(WeekSnapshot)
	snap.SetVector("ALICE", "2026-03-02", Vector{true, false})

	clone := snap.Clone()
	clone.Vector("ALICE", "2026-03-02")[1] = true

	if snap.Vector("ALICE", "2026-03-02")[1] {
		t.Error("mutating the clone must not touch the original")
	}
}

func TestWeekDates(t *testing.T) {
	dates, err := WeekDates("2026-03-02")
	if err != nil {
		t.Fatalf("week dates: %v", err)
	}
	if len(dates) != 7 {
		t.Fatalf("expected 7 dates, got %d", len(dates))
	}
	if dates[0] != "2026-03-02" || dates[6] != "2026-03-08" {
		t.Errorf("unexpected range: %v", dates)
	}

	if _, err := WeekDates("02/03/2026"); err == nil {
		t.Error("expected error for bad date format")
	}
}
