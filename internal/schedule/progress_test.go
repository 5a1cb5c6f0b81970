package schedule

import (
	"testing"
	"time"

	"github.com/ArtlessApps/ruckplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(programID string, day int, on time.Time) *domain.CompletionRecord {
	return &domain.CompletionRecord{
		UserID:            "user-1",
		ProgramID:         programID,
		ProgramWorkoutDay: day,
		Date:              on,
	}
}

func TestTrack_NoCompletions(t *testing.T) {
	// 7-day program, day 7 is rest. With nothing done, only day 1 and the
	// rest day are open.
	sched := generateTestSchedule(t, 7, date(2025, time.June, 2), []int{2, 4, 7})
	sched[6].WorkoutType = domain.WorkoutTypeRest

	tracked := Track(sched, nil)
	require.Len(t, tracked, 7)

	assert.False(t, tracked[0].IsLocked, "first workout is always unlocked")
	assert.False(t, tracked[6].IsLocked, "rest days are never locked")
	for i := 1; i < 6; i++ {
		assert.True(t, tracked[i].IsLocked, "day %d should be locked", i+1)
		assert.False(t, tracked[i].IsCompleted)
	}
}

func TestTrack_NonContiguousCompletion(t *testing.T) {
	sched := generateTestSchedule(t, 5, date(2025, time.June, 2), []int{2, 4, 7})
	records := []*domain.CompletionRecord{
		record("prog-1", 1, date(2025, time.June, 3)),
		record("prog-1", 2, date(2025, time.June, 5)),
		record("prog-1", 4, date(2025, time.June, 10)), // skipped day 3
	}

	tracked := Track(sched, records)

	assert.True(t, tracked[0].IsCompleted)
	assert.True(t, tracked[1].IsCompleted)
	assert.False(t, tracked[2].IsCompleted)
	assert.True(t, tracked[3].IsCompleted)
	assert.False(t, tracked[4].IsCompleted)

	assert.False(t, tracked[2].IsLocked, "the skipped day stays reachable")
	assert.True(t, tracked[4].IsLocked, "day 5 is beyond the unlock window")
}

func TestTrack_CompletionIsPositionalNotDateBased(t *testing.T) {
	sched := generateTestSchedule(t, 3, date(2025, time.June, 2), []int{2, 4, 7})
	// Day 1 logged two weeks late; it is still day 1.
	done := date(2025, time.June, 20)
	tracked := Track(sched, []*domain.CompletionRecord{record("prog-1", 1, done)})

	assert.True(t, tracked[0].IsCompleted)
	require.NotNil(t, tracked[0].CompletedAt)
	assert.True(t, tracked[0].CompletedAt.Equal(done))
	assert.False(t, tracked[1].IsLocked, "next session unlocks")
	assert.True(t, tracked[2].IsLocked)
}

func TestTrack_LegacyRecordsFillPositionally(t *testing.T) {
	sched := generateTestSchedule(t, 4, date(2025, time.June, 2), []int{2, 4, 7})
	// Old app versions logged without a day number; two such records mark
	// days 1 and 2 in date order.
	records := []*domain.CompletionRecord{
		record("prog-1", 0, date(2025, time.June, 3)),
		record("prog-1", 0, date(2025, time.June, 6)),
	}

	tracked := Track(sched, records)
	assert.True(t, tracked[0].IsCompleted)
	assert.True(t, tracked[1].IsCompleted)
	assert.False(t, tracked[2].IsCompleted)
	assert.False(t, tracked[2].IsLocked)
	assert.True(t, tracked[3].IsLocked)
}

func TestTrack_LegacyRecordsSkipRestDays(t *testing.T) {
	// A logged ruck belongs to a training slot, never a rest day.
	sched := generateTestSchedule(t, 3, date(2025, time.June, 2), []int{2, 4, 7})
	sched[0].WorkoutType = domain.WorkoutTypeRest

	tracked := Track(sched, []*domain.CompletionRecord{
		record("prog-1", 0, date(2025, time.June, 3)),
	})

	assert.False(t, tracked[0].IsCompleted, "rest day must not absorb the record")
	assert.True(t, tracked[1].IsCompleted)
	assert.False(t, tracked[2].IsCompleted)
}

func TestTrack_RestDayRecordDoesNotWidenWindow(t *testing.T) {
	sched := generateTestSchedule(t, 4, date(2025, time.June, 2), []int{2, 4, 7})
	sched[0].WorkoutType = domain.WorkoutTypeRest

	// A record tagged onto a rest day shows as completed but must not
	// unlock training further ahead.
	tracked := Track(sched, []*domain.CompletionRecord{
		record("prog-1", 1, date(2025, time.June, 3)),
	})

	assert.True(t, tracked[0].IsCompleted)
	assert.True(t, tracked[1].IsLocked, "day 2 stays beyond the unlock window")
	assert.True(t, tracked[2].IsLocked)
}

func TestTrack_StaleProgramRecordsIgnored(t *testing.T) {
	sched := generateTestSchedule(t, 3, date(2025, time.June, 2), []int{2, 4, 7})
	records := []*domain.CompletionRecord{
		record("some-other-program", 1, date(2025, time.June, 3)),
		record("some-other-program", 2, date(2025, time.June, 5)),
	}

	tracked := Track(sched, records)
	for _, w := range tracked {
		assert.False(t, w.IsCompleted)
	}
	assert.False(t, tracked[0].IsLocked)
	assert.True(t, tracked[1].IsLocked)
}

func TestTrack_DuplicateDayRecordsCountOnce(t *testing.T) {
	sched := generateTestSchedule(t, 3, date(2025, time.June, 2), []int{2, 4, 7})
	records := []*domain.CompletionRecord{
		record("prog-1", 1, date(2025, time.June, 3)),
		record("prog-1", 1, date(2025, time.June, 4)), // retried sync
	}

	tracked := Track(sched, records)
	assert.True(t, tracked[0].IsCompleted)
	require.NotNil(t, tracked[0].CompletedAt)
	assert.True(t, tracked[0].CompletedAt.Equal(date(2025, time.June, 3)), "first record wins")
	assert.False(t, tracked[1].IsLocked)
	assert.True(t, tracked[2].IsLocked)
}

func TestTrack_PreservesLength(t *testing.T) {
	sched := generateTestSchedule(t, 6, date(2025, time.June, 2), []int{1, 3, 5})
	tracked := Track(sched, []*domain.CompletionRecord{record("prog-1", 1, date(2025, time.June, 2))})
	assert.Len(t, tracked, len(sched))
}

func TestTodayView_UpcomingOnly(t *testing.T) {
	sched := generateTestSchedule(t, 4, date(2025, time.June, 2), []int{2, 4, 7})
	// Dates: Jun 3, 5, 8, 10. Viewed on Jun 6: days 3 and 4 remain.
	view := TodayView(sched, date(2025, time.June, 6))
	require.Len(t, view, 2)
	assert.Equal(t, 3, view[0].DayNumber)
	assert.Equal(t, 4, view[1].DayNumber)
}

func TestTodayView_IncludesToday(t *testing.T) {
	sched := generateTestSchedule(t, 2, date(2025, time.June, 2), []int{2, 4, 7})
	view := TodayView(sched, date(2025, time.June, 3))
	require.Len(t, view, 2)
	assert.Equal(t, 1, view[0].DayNumber)
}

func TestTodayView_FallsBackToCompletedToday(t *testing.T) {
	sched := generateTestSchedule(t, 2, date(2025, time.June, 2), []int{2, 4, 7})
	// All sessions are in the past; the last one was finished today.
	today := date(2025, time.June, 20)
	tracked := Track(sched, []*domain.CompletionRecord{
		record("prog-1", 1, date(2025, time.June, 3)),
		record("prog-1", 2, today),
	})

	view := TodayView(tracked, today)
	require.Len(t, view, 1)
	assert.Equal(t, 2, view[0].DayNumber)
	assert.True(t, view[0].IsCompleted)
}

func TestTodayView_EmptyWhenNothingRelevant(t *testing.T) {
	sched := generateTestSchedule(t, 2, date(2025, time.June, 2), []int{2, 4, 7})
	view := TodayView(sched, date(2025, time.July, 1))
	assert.Empty(t, view)
}
