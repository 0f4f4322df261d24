package calendar

import (
	"fmt"
	"strings"
	"time"
)

// isoLayout matches the UTC millisecond form used for every timestamp the
// client puts on the wire, e.g. 2026-10-19T09:30:00.000Z.
const isoLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t as an ISO-8601 string in UTC with millisecond
// precision. Years outside 0000-9999 use the six-digit signed form, e.g.
// +010000-01-01T00:00:00.000Z.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	year := t.Year()
	if year >= 0 && year <= 9999 {
		return t.Format(isoLayout)
	}
	return fmt.Sprintf("%+07d%s", year, t.Format(isoLayout[4:]))
}

// Layouts accepted when reading timestamps back from the server. Naive values
// (no offset) are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
