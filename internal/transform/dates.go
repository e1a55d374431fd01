package transform

import (
	"fmt"
	"regexp"
	"time"
)

var dateOnlyRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// ParseLocalDate parses a calendar date from backend payloads. Date-only
// strings (YYYY-MM-DD) and the date portion of an ISO timestamp are both
// treated as local calendar dates; an ISO timestamp's time-of-day and zone
// are discarded. This keeps day-based features from shifting by one day
// across timezones when the backend stores midnights in UTC.
func ParseLocalDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	candidate := raw
	if len(raw) > 10 && raw[10] == 'T' {
		candidate = raw[:10]
	}

	m := dateOnlyRe.FindStringSubmatch(candidate)
	if m == nil {
		// Last resort: accept anything RFC3339 can parse, then drop the
		// time of day in the parsed zone.
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
	}

	t, err := time.ParseInLocation("2006-01-02", candidate, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", raw, err)
	}
	return t, nil
}
