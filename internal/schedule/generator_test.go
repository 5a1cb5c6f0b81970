package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/ArtlessApps/ruckplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testProgram builds an n-day program; day numbers listed in restDays become
// rest entries.
func testProgram(n int, restDays ...int) *domain.Program {
	rest := make(map[int]bool)
	for _, d := range restDays {
		rest[d] = true
	}
	p := &domain.Program{ID: "prog-1", Name: "12 Week Base Builder"}
	for i := 1; i <= n; i++ {
		wt := domain.WorkoutTypeStandard
		if rest[i] {
			wt = domain.WorkoutTypeRest
		}
		p.Entries = append(p.Entries, domain.TemplateEntry{
			DayNumber:   i,
			Title:       fmt.Sprintf("Day %d", i),
			WorkoutType: wt,
		})
	}
	return p
}

func TestGenerate_TueThuSunFromMonday(t *testing.T) {
	// 2025-06-02 is a Monday.
	program := testProgram(7, 7)
	cfg := &domain.ScheduleConfig{
		ProgramID:     program.ID,
		StartDate:     date(2025, time.June, 2),
		PreferredDays: []int{2, 4, 7},
	}

	sched, err := Generate(program, cfg)
	require.NoError(t, err)
	require.Len(t, sched, 7)

	want := []time.Time{
		date(2025, time.June, 3),  // Tue, day 1
		date(2025, time.June, 5),  // Thu, day 2
		date(2025, time.June, 8),  // Sun, day 3
		date(2025, time.June, 10), // Tue, day 4
		date(2025, time.June, 12), // Thu, day 5
		date(2025, time.June, 15), // Sun, day 6
		date(2025, time.June, 17), // Tue, day 7
	}
	for i, w := range sched {
		assert.True(t, w.Date.Equal(want[i]), "day %d: got %v want %v", i+1, w.Date, want[i])
		assert.Equal(t, i+1, w.DayNumber)
	}
	assert.Equal(t, 1, sched[6].WeekNumber)
}

func TestGenerate_InclusiveStartDate(t *testing.T) {
	// 2025-06-03 is a Tuesday; the start date itself is eligible.
	program := testProgram(2)
	cfg := &domain.ScheduleConfig{
		ProgramID:     program.ID,
		StartDate:     date(2025, time.June, 3),
		PreferredDays: []int{2},
	}

	sched, err := Generate(program, cfg)
	require.NoError(t, err)
	require.Len(t, sched, 2)
	assert.True(t, sched[0].Date.Equal(date(2025, time.June, 3)))
	assert.True(t, sched[1].Date.Equal(date(2025, time.June, 10)), "single preferred day degenerates to weekly")
}

func TestGenerate_Deterministic(t *testing.T) {
	program := testProgram(14, 7, 14)
	cfg := &domain.ScheduleConfig{
		ProgramID:     program.ID,
		StartDate:     date(2025, time.March, 14),
		PreferredDays: []int{1, 3, 5},
	}

	first, err := Generate(program, cfg)
	require.NoError(t, err)
	second, err := Generate(program, cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerate_StrictlyIncreasingDates(t *testing.T) {
	program := testProgram(10)
	cfg := &domain.ScheduleConfig{
		ProgramID:     program.ID,
		StartDate:     date(2025, time.January, 1),
		PreferredDays: []int{1, 2, 3, 4, 5, 6, 7},
	}

	sched, err := Generate(program, cfg)
	require.NoError(t, err)
	require.Len(t, sched, len(program.Entries))
	for i := 1; i < len(sched); i++ {
		assert.True(t, sched[i-1].Date.Before(sched[i].Date))
	}
}

func TestGenerate_EmptyPreferredDaysUsesFallback(t *testing.T) {
	program := testProgram(7)
	start := date(2025, time.June, 2)

	implicit, err := Generate(program, &domain.ScheduleConfig{ProgramID: program.ID, StartDate: start})
	require.NoError(t, err)
	explicit, err := Generate(program, &domain.ScheduleConfig{ProgramID: program.ID, StartDate: start, PreferredDays: []int{2, 4, 7}})
	require.NoError(t, err)

	assert.Equal(t, explicit, implicit)
}

func TestGenerate_EmptyTemplate(t *testing.T) {
	program := &domain.Program{ID: "prog-1"}
	sched, err := Generate(program, &domain.ScheduleConfig{StartDate: date(2025, time.June, 2)})
	require.NoError(t, err)
	assert.Empty(t, sched)
}

func TestGenerate_MalformedTemplate(t *testing.T) {
	program := &domain.Program{
		ID: "prog-1",
		Entries: []domain.TemplateEntry{
			{DayNumber: 1, WorkoutType: domain.WorkoutTypeStandard},
			{DayNumber: 3, WorkoutType: domain.WorkoutTypeStandard}, // gap
		},
	}

	_, err := Generate(program, &domain.ScheduleConfig{StartDate: date(2025, time.June, 2)})
	require.ErrorIs(t, err, domain.ErrMalformedTemplate)

	program.Entries[1].DayNumber = 1 // duplicate
	_, err = Generate(program, &domain.ScheduleConfig{StartDate: date(2025, time.June, 2)})
	require.ErrorIs(t, err, domain.ErrMalformedTemplate)
}

func TestGenerate_NormalizesStartDate(t *testing.T) {
	program := testProgram(1)
	cfg := &domain.ScheduleConfig{
		ProgramID:     program.ID,
		StartDate:     time.Date(2025, time.June, 3, 17, 45, 12, 0, time.UTC),
		PreferredDays: []int{2},
	}

	sched, err := Generate(program, cfg)
	require.NoError(t, err)
	require.Len(t, sched, 1)
	assert.True(t, sched[0].Date.Equal(date(2025, time.June, 3)))
	assert.Equal(t, 0, sched[0].Date.Hour())
}

func TestISOWeekday(t *testing.T) {
	tests := []struct {
		day  time.Time
		want int
	}{
		{date(2025, time.June, 2), 1}, // Monday
		{date(2025, time.June, 7), 6}, // Saturday
		{date(2025, time.June, 8), 7}, // Sunday
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ISOWeekday(tt.day))
	}
}
