// Package segments groups an employee's selected slots into continuous work periods.
package segments

import (
	"fmt"
	"sort"

	"semainier/internal/timegrid"
)

// Segment is a maximal run of contiguous selected slots: consecutive slots are
// separated by exactly one grid interval.
type Segment struct {
	Slots []string
}

// Start returns the first slot of the segment.
func (s Segment) Start() string {
	return s.Slots[0]
}

// Last returns the last slot of the segment.
func (s Segment) Last() string {
	return s.Slots[len(s.Slots)-1]
}

// Count returns the number of slots in the segment.
func (s Segment) Count() int {
	return len(s.Slots)
}

// Group sorts the selected slots chronologically (overnight-aware) and splits
// them wherever the gap between neighbours exceeds one interval. Duplicates
// collapse. An empty selection yields no segments.
func Group(selected []string, intervalMinutes int) ([]Segment, error) {
	if intervalMinutes <= 0 {
		return nil, fmt.Errorf("group slots: interval %d minutes", intervalMinutes)
	}
	if len(selected) == 0 {
		return nil, nil
	}

	slots := append([]string(nil), selected...)
	sort.Slice(slots, func(i, j int) bool {
		return timegrid.Compare(slots[i], slots[j]) < 0
	})

	var groups []Segment
	current := Segment{Slots: []string{slots[0]}}

	for i := 1; i < len(slots); i++ {
		gap, err := timegrid.GapMinutes(current.Last(), slots[i])
		if err != nil {
			return nil, fmt.Errorf("group slots: %w", err)
		}
		switch {
		case gap == 0:
			// duplicate slot
		case gap == intervalMinutes:
			current.Slots = append(current.Slots, slots[i])
		default:
			groups = append(groups, current)
			current = Segment{Slots: []string{slots[i]}}
		}
	}
	groups = append(groups, current)

	return groups, nil
}
