package models

import (
	"fmt"
	"time"
)

// InstantFormat is the canonical transport rendering of an instant:
// UTC, millisecond precision, trailing Z.
const InstantFormat = "2006-01-02T15:04:05.000Z"

// instantLayouts are the accepted input forms, tried in order. Everything
// normalizes to UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseInstant parses ISO-8601-ish date text into an instant. Text that no
// layout accepts is rejected; callers surface the failure as invalid input
// rather than storing the raw string.
func ParseInstant(text string) (time.Time, error) {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", text)
}

// FormatInstant renders an instant in the canonical transport form.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(InstantFormat)
}
