package paint

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used for day records.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate formats t as an ISO calendar date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DateRange returns every date from start to end inclusive. A reversed range
// is swapped rather than treated as empty.
func DateRange(start, end time.Time) []time.Time {
	if end.Before(start) {
		start, end = end, start
	}
	var dates []time.Time
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		dates = append(dates, cur)
	}
	return dates
}

// AlignedRange is DateRange left-padded with nil so that the first date
// falls in its Sunday-based weekday column of a 7-column grid.
func AlignedRange(start, end time.Time) []*time.Time {
	dates := DateRange(start, end)
	pad := 0
	if len(dates) > 0 {
		pad = int(dates[0].Weekday())
	}
	out := make([]*time.Time, pad, pad+len(dates))
	for i := range dates {
		out = append(out, &dates[i])
	}
	return out
}

// AlignedDates parses startDate and endDate and returns their AlignedRange.
func AlignedDates(startDate, endDate string) ([]*time.Time, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return nil, err
	}
	return AlignedRange(start, end), nil
}
