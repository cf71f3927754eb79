package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semainier/internal/recap"
)

func TestBuildWorkbook(t *testing.T) {
	report := WeekReport{
		Shop:      "bakery",
		WeekStart: "2026-03-02",
		Dates:     []string{"2026-03-02", "2026-03-03"},
		Days: map[string][]recap.TeamRow{
			"2026-03-02": {
				{Employee: "ALICE", Day: recap.Day{Arrival: "10:00", Departure: "13:00", HoursWorked: 3}},
				{Employee: "BOB", Day: recap.Day{}},
			},
			"2026-03-03": {
				{Employee: "ALICE", Day: recap.Day{Arrival: "10:00", Exit1: "11:00", Return1: "12:00", Departure: "13:00", HoursWorked: 2}},
				{Employee: "BOB", Day: recap.Day{Arrival: "09:00", Departure: "12:00", HoursWorked: 3}},
			},
		},
		Totals: []recap.Week{
			{Employee: "ALICE", TotalHours: 5},
			{Employee: "BOB", TotalHours: 3},
		},
	}

	file, err := BuildWorkbook(report)
	require.NoError(t, err)

	sheets := file.GetSheetList()
	assert.Equal(t, []string{"2026-03-02", "2026-03-03", "Week total"}, sheets)

	employee, err := file.GetCellValue("2026-03-02", "A2")
	require.NoError(t, err)
	assert.Equal(t, "ALICE", employee)

	arrival, err := file.GetCellValue("2026-03-02", "B2")
	require.NoError(t, err)
	assert.Equal(t, "10:00", arrival)

	hours, err := file.GetCellValue("2026-03-03", "H2")
	require.NoError(t, err)
	assert.Equal(t, "2.0", hours)

	total, err := file.GetCellValue("Week total", "B2")
	require.NoError(t, err)
	assert.Equal(t, "5.0", total)
}

func TestWriteWeekProducesWorkbookBytes(t *testing.T) {
	report := WeekReport{
		Shop:      "bakery",
		WeekStart: "2026-03-02",
		Dates:     []string{"2026-03-02"},
		Days:      map[string][]recap.TeamRow{},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWeek(report, &buf))
	assert.NotZero(t, buf.Len())
}
