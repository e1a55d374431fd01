package domain

import (
	"sort"
	"time"
)

// SkippedDaySet tracks calendar dates the user has skipped, independent of
// whether a plan slot exists for them. Keys are canonical date strings.
type SkippedDaySet map[string]struct{}

// NewSkippedDaySet builds a set from date strings.
func NewSkippedDaySet(dates ...string) SkippedDaySet {
	s := make(SkippedDaySet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

func (s SkippedDaySet) Contains(dateKey string) bool {
	_, ok := s[dateKey]
	return ok
}

func (s SkippedDaySet) Add(dateKey string) {
	s[dateKey] = struct{}{}
}

func (s SkippedDaySet) Remove(dateKey string) {
	delete(s, dateKey)
}

// Clone returns an independent copy for snapshot/rollback.
func (s SkippedDaySet) Clone() SkippedDaySet {
	out := make(SkippedDaySet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Sorted returns the member dates in ascending order.
func (s SkippedDaySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Within returns the member dates falling inside the inclusive range,
// sorted ascending. Used to restrict a generation request to skips the
// requested window actually covers.
func (s SkippedDaySet) Within(start, end time.Time) []string {
	startKey := DateKey(start)
	endKey := DateKey(end)
	var out []string
	for k := range s {
		if k >= startKey && k <= endKey {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
