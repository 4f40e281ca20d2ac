package storage

import "time"

// TimestampLayout is fixed-width UTC so ORDER BY on a text column is chronological.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTimestamp renders t for a TEXT timestamp column.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp reads a TEXT timestamp column. Rows written as RFC 3339 with a
// local offset are accepted too; an unreadable value yields the zero time.
func ParseTimestamp(s string) time.Time {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
