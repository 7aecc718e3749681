package library

import (
	"strings"
	"time"
)

// Timestamp is an ISO-8601 instant kept exactly as it was stored. Files
// written by other tools may carry date-only values, a different fraction
// width, or nothing at all; none of those make the document unreadable,
// and an untouched prompt keeps its original text when the file is rewritten.
type Timestamp string

// timestampLayout matches what JavaScript's Date.toISOString produces.
const timestampLayout = "2006-01-02T15:04:05.000Z"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// At formats t as a millisecond-precision UTC timestamp.
func At(t time.Time) Timestamp {
	return Timestamp(t.UTC().Format(timestampLayout))
}

// Time parses the stored text. Values without a zone are read as UTC.
func (ts Timestamp) Time() (time.Time, bool) {
	s := strings.TrimSpace(string(ts))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Equal reports whether ts parses to the same instant as t.
func (ts Timestamp) Equal(t time.Time) bool {
	parsed, ok := ts.Time()
	return ok && parsed.Equal(t)
}

func (ts Timestamp) String() string { return string(ts) }
