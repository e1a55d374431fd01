package calendar

import (
	"testing"
	"time"

	"github.com/mkowalczyk/platecal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestWeekStart_SundayOnOrBefore(t *testing.T) {
	// 2024-03-06 is a Wednesday; the week's Sunday is 2024-03-03.
	assert.Equal(t, localDate(2024, 3, 3), WeekStart(localDate(2024, 3, 6)))
	// A Sunday is its own week start.
	assert.Equal(t, localDate(2024, 3, 3), WeekStart(localDate(2024, 3, 3)))
	// Time of day is stripped.
	assert.Equal(t, localDate(2024, 3, 3), WeekStart(time.Date(2024, 3, 9, 23, 15, 0, 0, time.Local)))
}

func TestComputeWindow_LimitedTierAnchorsToCursorWeek(t *testing.T) {
	w := ComputeWindow(localDate(2024, 3, 6), 7, nil)

	assert.Equal(t, localDate(2024, 3, 3), w.StartDate)
	assert.Equal(t, 7, w.DurationDays)
	assert.Equal(t, localDate(2024, 3, 9), w.EndDate())
}

func TestComputeWindow_UnlimitedTierMonthAnchored(t *testing.T) {
	// Cursor 2024-03-15, no active plan: window starts on the Sunday
	// on/before 2024-03-01, which is 2024-02-25.
	w := ComputeWindow(localDate(2024, 3, 15), domain.UnlimitedDuration, nil)

	assert.Equal(t, localDate(2024, 2, 25), w.StartDate)
	assert.Equal(t, 28, w.DurationDays)
}

func TestComputeWindow_UnlimitedTierAnchorsToActivePlanMonth(t *testing.T) {
	plan := domain.Plan{
		ID:        "plan-1",
		StartDate: localDate(2024, 4, 7),
		EndDate:   localDate(2024, 5, 4),
	}

	// Cursor sits inside the plan, so the window anchors to the plan's
	// start month (April), not the cursor's month.
	w := ComputeWindow(localDate(2024, 4, 20), domain.UnlimitedDuration, []domain.Plan{plan})

	// Sunday on/before 2024-04-01 is 2024-03-31.
	assert.Equal(t, localDate(2024, 3, 31), w.StartDate)
	assert.Equal(t, 28, w.DurationDays)
}

func TestComputeWindow_ZeroLimitStillShowsAWeek(t *testing.T) {
	w := ComputeWindow(localDate(2024, 3, 6), 0, nil)
	assert.Equal(t, 7, w.DurationDays)
	assert.Equal(t, localDate(2024, 3, 3), w.StartDate)
}

func TestComputeWindow_LimitCappedAtFourWeeks(t *testing.T) {
	w := ComputeWindow(localDate(2024, 3, 6), 56, nil)
	assert.Equal(t, 28, w.DurationDays)
}

func TestComputeWindow_Idempotent(t *testing.T) {
	cursor := localDate(2024, 3, 15)
	a := ComputeWindow(cursor, 14, nil)
	b := ComputeWindow(cursor, 14, nil)
	assert.Equal(t, a, b)
}

func TestStep_ForwardThenBackwardReturnsOriginalWindow(t *testing.T) {
	cursor := localDate(2024, 3, 6)

	forward := Step(cursor, 7, nil, +1)
	back := Step(forward, 7, nil, -1)

	assert.Equal(t, ComputeWindow(cursor, 7, nil), ComputeWindow(back, 7, nil))
}

func TestStep_WeekWindowStepsByWindowSize(t *testing.T) {
	cursor := localDate(2024, 3, 6)
	assert.Equal(t, localDate(2024, 3, 20), Step(cursor, 14, nil, +1))
	assert.Equal(t, localDate(2024, 2, 21), Step(cursor, 14, nil, -1))
}

func TestStep_MonthWindowPagesAcrossMonthLengths(t *testing.T) {
	cursor := localDate(2024, 1, 15)

	// Paging forward repeatedly must produce a strictly advancing window
	// start each time, across 31/29/31-day months.
	prev := ComputeWindow(cursor, domain.UnlimitedDuration, nil).StartDate
	for i := 0; i < 4; i++ {
		cursor = Step(cursor, domain.UnlimitedDuration, nil, +1)
		start := ComputeWindow(cursor, domain.UnlimitedDuration, nil).StartDate
		require.True(t, start.After(prev), "window start must advance, got %s after %s", start, prev)
		prev = start
	}
}

func TestStep_MonthWindowRoundTrips(t *testing.T) {
	cursor := localDate(2024, 3, 15)

	forward := Step(cursor, domain.UnlimitedDuration, nil, +1)
	back := Step(forward, domain.UnlimitedDuration, nil, -1)

	assert.Equal(t,
		ComputeWindow(cursor, domain.UnlimitedDuration, nil),
		ComputeWindow(back, domain.UnlimitedDuration, nil))
}

func TestBroadenedWindow_CenteredBeforeCursor(t *testing.T) {
	w := BroadenedWindow(localDate(2024, 3, 15))

	// Two weeks before 2024-03-15 is 2024-03-01; its week start is 2024-02-25.
	assert.Equal(t, localDate(2024, 2, 25), w.StartDate)
	assert.Equal(t, 28, w.DurationDays)
}
