// Package calendar computes the active scheduling window from the
// navigation cursor, the subscription duration limit, and the active plan
// ranges. All functions are pure.
package calendar

import (
	"time"

	"github.com/mkowalczyk/platecal/internal/domain"
)

// MaxWindowDays caps the display window at four weeks regardless of tier.
const MaxWindowDays = 28

// WeekStart returns the Sunday on or before the given date, at local
// midnight.
func WeekStart(date time.Time) time.Time {
	d := domain.Midnight(date)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// MonthAnchorStart returns the first week start (Sunday) on or before the
// first day of the month containing the anchor date. The four-week window
// pages on this monthly grid so navigation never drifts by partial weeks.
func MonthAnchorStart(date time.Time) time.Time {
	firstOfMonth := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	return WeekStart(firstOfMonth)
}

// anchorDate picks the date the window anchors on: the start of the plan
// whose range contains the cursor, if any, otherwise the cursor itself.
func anchorDate(cursor time.Time, activePlans []domain.Plan) time.Time {
	for _, p := range activePlans {
		if p.Contains(cursor) {
			return p.StartDate
		}
	}
	return cursor
}

// WindowDays maps a tier duration limit onto the display window size.
// -1 (unlimited) shows four weeks; 0 (no meal-planning access) still shows
// one week; anything else is the limit capped at four weeks.
func WindowDays(durationLimit int) int {
	switch {
	case durationLimit == domain.UnlimitedDuration:
		return MaxWindowDays
	case durationLimit > 0:
		if durationLimit > MaxWindowDays {
			return MaxWindowDays
		}
		return durationLimit
	default:
		return 7
	}
}

// ComputeWindow derives the calendar window for the given cursor. Four-week
// windows anchor to the monthly grid of the active plan (or the cursor's
// month); narrower windows anchor to the cursor's week start.
func ComputeWindow(cursor time.Time, durationLimit int, activePlans []domain.Plan) domain.CalendarWindow {
	days := WindowDays(durationLimit)

	var start time.Time
	if days >= MaxWindowDays {
		start = MonthAnchorStart(anchorDate(cursor, activePlans))
	} else {
		start = WeekStart(cursor)
	}

	return domain.CalendarWindow{StartDate: start, DurationDays: days}
}

// BroadenedWindow is the fallback fetch window used when the aligned window
// returns zero day entries: four weeks starting at the week start two weeks
// before the cursor.
func BroadenedWindow(cursor time.Time) domain.CalendarWindow {
	start := WeekStart(cursor.AddDate(0, 0, -14))
	return domain.CalendarWindow{StartDate: start, DurationDays: MaxWindowDays}
}

// Step moves the cursor by one window in the given direction (+1 or -1).
// Four-week windows step by whole calendar months so months of different
// lengths page correctly; narrower windows step by the window size in days.
// The month step lands on the first of the adjacent month, which keeps the
// recomputed window anchor moving even when the month anchor's Sunday falls
// in the previous month.
func Step(cursor time.Time, durationLimit int, activePlans []domain.Plan, direction int) time.Time {
	days := WindowDays(durationLimit)
	if days >= MaxWindowDays {
		anchor := anchorDate(cursor, activePlans)
		firstOfMonth := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		return firstOfMonth.AddDate(0, direction, 0)
	}
	return cursor.AddDate(0, 0, direction*days)
}
