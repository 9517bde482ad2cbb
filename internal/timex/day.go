package timex

import (
	"fmt"
	"time"
)

// DayLayout is the natural-key format of dated journal entries.
const DayLayout = "2006-01-02"

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD key as midnight UTC.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

func FormatDay(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// RetentionCutoff returns the instant before which records are older than
// days full days, counted from the start of now's day. A record dated exactly
// days ago is not older than the cutoff.
func RetentionCutoff(now time.Time, days int) time.Time {
	return StartOfDay(now).AddDate(0, 0, -days)
}
