package schedule

import (
	"testing"
	"time"

	"github.com/ArtlessApps/ruckplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateTestSchedule(t *testing.T, n int, start time.Time, days []int) []domain.ScheduledWorkout {
	t.Helper()
	sched, err := Generate(testProgram(n), &domain.ScheduleConfig{
		ProgramID:     "prog-1",
		StartDate:     start,
		PreferredDays: days,
	})
	require.NoError(t, err)
	return sched
}

func TestAdapt_NoOpWhenNothingOverdue(t *testing.T) {
	days := []int{2, 4, 7}
	sched := generateTestSchedule(t, 7, date(2025, time.June, 2), days)

	// "Today" is before the first session; nothing to move.
	adapted := Adapt(sched, nil, date(2025, time.June, 2), days)
	assert.Equal(t, sched, adapted)
}

func TestAdapt_PushesOverdueForward(t *testing.T) {
	days := []int{2, 4, 7}
	sched := generateTestSchedule(t, 4, date(2025, time.June, 2), days)
	// Nominal dates: Jun 3, 5, 8, 10. User went dark for two weeks.
	today := date(2025, time.June, 16) // a Monday

	adapted := Adapt(sched, nil, today, days)
	require.Len(t, adapted, 4)
	assert.True(t, adapted[0].Date.Equal(date(2025, time.June, 17))) // Tue
	assert.True(t, adapted[1].Date.Equal(date(2025, time.June, 19))) // Thu
	assert.True(t, adapted[2].Date.Equal(date(2025, time.June, 22))) // Sun
	assert.True(t, adapted[3].Date.Equal(date(2025, time.June, 24))) // Tue

	for i := range adapted {
		assert.False(t, adapted[i].Date.Before(today), "incomplete work must not stay in the past")
		assert.Equal(t, sched[i].DayNumber, adapted[i].DayNumber, "order must not change")
	}
}

func TestAdapt_CompletedEntriesKeepDates(t *testing.T) {
	days := []int{2, 4, 7}
	sched := generateTestSchedule(t, 4, date(2025, time.June, 2), days)
	today := date(2025, time.June, 16)

	adapted := Adapt(sched, map[int]bool{1: true, 2: true}, today, days)
	assert.True(t, adapted[0].Date.Equal(sched[0].Date))
	assert.True(t, adapted[1].Date.Equal(sched[1].Date))
	assert.True(t, adapted[2].Date.Equal(date(2025, time.June, 17)))
	assert.True(t, adapted[3].Date.Equal(date(2025, time.June, 19)))
}

func TestAdapt_Idempotent(t *testing.T) {
	days := []int{2, 4, 7}
	sched := generateTestSchedule(t, 7, date(2025, time.June, 2), days)
	today := date(2025, time.June, 20)
	completed := map[int]bool{1: true}

	once := Adapt(sched, completed, today, days)
	twice := Adapt(once, completed, today, days)
	assert.Equal(t, once, twice)
}

func TestAdapt_PreservesLengthAndOrdering(t *testing.T) {
	days := []int{3}
	sched := generateTestSchedule(t, 5, date(2025, time.June, 2), days)
	today := date(2025, time.July, 21)

	adapted := Adapt(sched, nil, today, days)
	require.Len(t, adapted, len(sched))
	for i := 1; i < len(adapted); i++ {
		assert.True(t, adapted[i-1].Date.Before(adapted[i].Date))
	}
}

func TestAdapt_EmptySchedule(t *testing.T) {
	adapted := Adapt(nil, nil, date(2025, time.June, 2), []int{2, 4, 7})
	assert.Empty(t, adapted)
}
