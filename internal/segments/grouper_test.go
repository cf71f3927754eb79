package segments

import (
	"reflect"
	"testing"
)

func TestGroup(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
		interval int
		expected [][]string
	}{
		{
			name:     "empty selection",
			selected: nil,
			interval: 30,
			expected: nil,
		},
		{
			name:     "single slot",
			selected: []string{"10:00"},
			interval: 30,
			expected: [][]string{{"10:00"}},
		},
		{
			name:     "one continuous run",
			selected: []string{"10:00", "10:30", "11:00"},
			interval: 30,
			expected: [][]string{{"10:00", "10:30", "11:00"}},
		},
		{
			name:     "gap splits into two segments",
			selected: []string{"10:00", "10:30", "12:00", "12:30"},
			interval: 30,
			expected: [][]string{{"10:00", "10:30"}, {"12:00", "12:30"}},
		},
		{
			name:     "three segments",
			selected: []string{"09:00", "12:00", "12:30", "18:00", "18:30"},
			interval: 30,
			expected: [][]string{{"09:00"}, {"12:00", "12:30"}, {"18:00", "18:30"}},
		},
		{
			name:     "unsorted input is sorted first",
			selected: []string{"11:00", "10:00", "10:30"},
			interval: 30,
			expected: [][]string{{"10:00", "10:30", "11:00"}},
		},
		{
			name:     "overnight run stays contiguous",
			selected: []string{"23:30", "00:00"},
			interval: 30,
			expected: [][]string{{"23:30", "00:00"}},
		},
		{
			name:     "early morning slots sort after evening",
			selected: []string{"00:00", "23:30", "00:30"},
			interval: 30,
			expected: [][]string{{"23:30", "00:00", "00:30"}},
		},
		{
			name:     "duplicates collapse",
			selected: []string{"10:00", "10:00", "10:30"},
			interval: 30,
			expected: [][]string{{"10:00", "10:30"}},
		},
		{
			name:     "hourly interval",
			selected: []string{"09:00", "10:00", "14:00"},
			interval: 60,
			expected: [][]string{{"09:00", "10:00"}, {"14:00"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Group(tt.selected, tt.interval)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var gotSlots [][]string
			for _, seg := range got {
				gotSlots = append(gotSlots, seg.Slots)
			}
			if !reflect.DeepEqual(gotSlots, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, gotSlots)
			}
		})
	}
}

func TestGroupRejectsBadInterval(t *testing.T) {
	if _, err := Group([]string{"10:00"}, 0); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

func TestGroupRejectsBadSlot(t *testing.T) {
	if _, err := Group([]string{"10:00", "nonsense"}, 30); err == nil {
		t.Fatal("expected error for malformed slot label")
	}
}
