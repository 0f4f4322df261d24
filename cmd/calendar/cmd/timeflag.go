package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// parseTime reads a time flag. RFC 3339 is tried first; anything else goes
// through dateparser relative to now, in now's location. Empty yields the zero time.
func parseTime(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime:     now,
		DefaultTimezone: now.Location(),
	}
	dt, err := dateparser.Parse(cfg, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", value, err)
	}
	if dt.Time.IsZero() {
		return time.Time{}, fmt.Errorf("parse time %q: no date found", value)
	}
	return dt.Time, nil
}

// timeFlag parses the named string flag, wrapping errors with the flag name.
func timeFlag(name, value string, now time.Time) (time.Time, error) {
	t, err := parseTime(value, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}
