package domain

import "time"

// DateLayout is the canonical calendar-date format used for index keys,
// wire payloads, and the skipped-day set.
const DateLayout = "2006-01-02"

// DateKey formats a time as the canonical calendar-date key, discarding the
// time of day.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight strips the time-of-day component, keeping the location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two instants fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return DateKey(a) == DateKey(b)
}

// RecipeSummary is the inlined recipe detail carried by an enriched slot.
// Only the fields the calendar surface renders are kept.
type RecipeSummary struct {
	ID          string
	Title       string
	Description string
	MealType    MealType
	ImageURL    string
	PrepTime    int
	CookTime    int
	Servings    int
}

// MealSlot is one scheduled meal for one calendar date within one plan.
// DayIndex is the addressing key for status mutations and stays stable even
// if the date is recomputed from the plan start.
type MealSlot struct {
	PlanID   string
	Date     time.Time
	DayIndex int
	RecipeID string
	Recipe   *RecipeSummary
	MealType MealType
	Status   MealStatus
}

// HasRecipe reports whether the slot carries a recipe reference.
func (s MealSlot) HasRecipe() bool {
	return s.RecipeID != ""
}

// Plan is a contiguous date range with its ordered meal slots.
type Plan struct {
	ID        string
	StartDate time.Time
	EndDate   time.Time
	Days      []MealSlot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contains reports whether the given date falls inside the plan's inclusive
// date range.
func (p Plan) Contains(date time.Time) bool {
	d := Midnight(date)
	return !d.Before(Midnight(p.StartDate)) && !d.After(Midnight(p.EndDate))
}

// DurationDays is the inclusive length of the plan's date range.
func (p Plan) DurationDays() int {
	start := Midnight(p.StartDate)
	end := Midnight(p.EndDate)
	return int(end.Sub(start).Hours()/24) + 1
}

// DayIndex is the consolidated date -> at-most-one-slot read model the
// calendar renders from. Keys are canonical date strings.
type DayIndex map[string]MealSlot

// Clone returns a deep-enough copy for snapshot/rollback. MealSlot is a
// value type; the Recipe pointer is shared intentionally since summaries
// are never mutated in place.
func (d DayIndex) Clone() DayIndex {
	out := make(DayIndex, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// CalendarWindow is the derived display/fetch window. EndDate is inclusive.
type CalendarWindow struct {
	StartDate    time.Time
	DurationDays int
}

// EndDate returns the inclusive last day of the window.
func (w CalendarWindow) EndDate() time.Time {
	return w.StartDate.AddDate(0, 0, w.DurationDays-1)
}

// ContainsDate reports whether a date falls inside the window.
func (w CalendarWindow) ContainsDate(date time.Time) bool {
	d := Midnight(date)
	return !d.Before(Midnight(w.StartDate)) && !d.After(Midnight(w.EndDate()))
}

// Weeks splits the window into 7-day rows for rendering. The window
// duration is always a whole number of weeks.
func (w CalendarWindow) Weeks() [][]time.Time {
	days := make([]time.Time, 0, w.DurationDays)
	for i := 0; i < w.DurationDays; i++ {
		days = append(days, w.StartDate.AddDate(0, 0, i))
	}
	var weeks [][]time.Time
	for i := 0; i < len(days); i += 7 {
		end := i + 7
		if end > len(days) {
			end = len(days)
		}
		weeks = append(weeks, days[i:end])
	}
	return weeks
}
