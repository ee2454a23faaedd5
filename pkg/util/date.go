package util

import (
	"strconv"
	"time"
)

// JST is the timezone disclosure timestamps are expressed in.
var JST = time.FixedZone("JST", 9*60*60)

const (
	DateLayout       = "2006-01-02"
	SubmitTimeLayout = "2006-01-02 15:04"
)

// ParseTime tries RFC3339, RFC3339Nano, the disclosure submit layout, plain
// dates and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(SubmitTimeLayout, s, JST); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(DateLayout, s, JST); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// ParseDate parses a YYYY-MM-DD date at midnight JST.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, JST)
}

// DaysBetween returns every calendar day from..to inclusive, in ascending
// order. It returns nil when to precedes from.
func DaysBetween(from, to time.Time) []time.Time {
	from = truncateDay(from)
	to = truncateDay(to)
	if to.Before(from) {
		return nil
	}
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
