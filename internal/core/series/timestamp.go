package series

import (
	"fmt"
	"strings"
	"time"
)

const (
	canonicalKeyLayout = "2006-01-02T15:04:05Z"
	instantLayout      = "2006-01-02T15:04:05.000Z"
)

// CanonicalKey normalizes a timestamp to UTC ISO-8601 with second precision.
// It is the key for every per-timestamp cache and dedup map.
func CanonicalKey(t time.Time) string {
	return t.UTC().Format(canonicalKeyLayout)
}

// InstantString is the millisecond UTC form carried in shape properties
func InstantString(t time.Time) string {
	return t.UTC().Format(instantLayout)
}

// ObjectKey is the canonical key with the colons stripped, used to name
// objects in flat storage
func ObjectKey(t time.Time) string {
	return strings.ReplaceAll(CanonicalKey(t), ":", "")
}

// ParseTimestamp accepts RFC 3339 with or without fractional seconds
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// Interval is a closed time range
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies inside the interval
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && !t.After(i.End)
}

// Validate checks that the interval is not inverted
func (i Interval) Validate() error {
	if i.End.Before(i.Start) {
		return fmt.Errorf("interval end %s is before start %s", CanonicalKey(i.End), CanonicalKey(i.Start))
	}
	return nil
}
