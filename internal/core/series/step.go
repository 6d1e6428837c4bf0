package series

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StepUnit is the calendar granularity of a series
type StepUnit int

const (
	StepUnitUnknown StepUnit = iota
	StepUnitHour
	StepUnitDay
	StepUnitMonth
	StepUnitYear
)

// String returns the string representation of the step unit
func (u StepUnit) String() string {
	switch u {
	case StepUnitHour:
		return "hour"
	case StepUnitDay:
		return "day"
	case StepUnitMonth:
		return "month"
	case StepUnitYear:
		return "year"
	default:
		return "unknown"
	}
}

// IsValid checks if the step unit is one of the known granularities
func (u StepUnit) IsValid() bool {
	return u >= StepUnitHour && u <= StepUnitYear
}

// StepUnitFromString accepts both "day" and "daily" style names
func StepUnitFromString(s string) StepUnit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hour", "hours", "hourly", "h":
		return StepUnitHour
	case "day", "days", "daily", "d":
		return StepUnitDay
	case "month", "months", "monthly", "mo":
		return StepUnitMonth
	case "year", "years", "yearly", "y":
		return StepUnitYear
	default:
		return StepUnitUnknown
	}
}

// StepSize is a calendar-aware step. Months and years are not fixed
// durations so the step is kept as a unit and a count.
type StepSize struct {
	Unit  StepUnit
	Count int
}

// Hourly, Daily, Monthly and Yearly are the natural steps of the series
var (
	Hourly  = StepSize{Unit: StepUnitHour, Count: 1}
	Daily   = StepSize{Unit: StepUnitDay, Count: 1}
	Monthly = StepSize{Unit: StepUnitMonth, Count: 1}
	Yearly  = StepSize{Unit: StepUnitYear, Count: 1}
)

// ParseStepSize parses "hour", "3h", "1 day", "monthly" and similar forms
func ParseStepSize(s string) (StepSize, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return StepSize{}, fmt.Errorf("step size cannot be empty")
	}

	digits := 0
	for digits < len(trimmed) && trimmed[digits] >= '0' && trimmed[digits] <= '9' {
		digits++
	}

	count := 1
	if digits > 0 {
		n, err := strconv.Atoi(trimmed[:digits])
		if err != nil {
			return StepSize{}, fmt.Errorf("invalid step count in %q: %w", s, err)
		}
		count = n
	}

	unit := StepUnitFromString(trimmed[digits:])
	step := StepSize{Unit: unit, Count: count}
	if err := step.Validate(); err != nil {
		return StepSize{}, fmt.Errorf("invalid step size %q: %w", s, err)
	}
	return step, nil
}

// Validate checks the unit and count
func (s StepSize) Validate() error {
	if !s.Unit.IsValid() {
		return fmt.Errorf("unknown step unit")
	}
	if s.Count < 1 {
		return fmt.Errorf("step count must be positive")
	}
	return nil
}

// AddTo advances t by n steps
func (s StepSize) AddTo(t time.Time, n int) time.Time {
	k := s.Count * n
	switch s.Unit {
	case StepUnitHour:
		return t.Add(time.Duration(k) * time.Hour)
	case StepUnitDay:
		return t.AddDate(0, 0, k)
	case StepUnitMonth:
		return t.AddDate(0, k, 0)
	case StepUnitYear:
		return t.AddDate(k, 0, 0)
	default:
		return t
	}
}

// Next advances t by a single step
func (s StepSize) Next(t time.Time) time.Time {
	return s.AddTo(t, 1)
}

// Aligned reports whether t, in UTC, falls on a boundary of the step unit:
// every unit needs zero minutes and seconds, days need hour 0, months need
// day 1 and years need January. Sub-second precision is ignored, matching
// the second-precision CanonicalKey.
func (s StepSize) Aligned(t time.Time) bool {
	u := t.UTC().Truncate(time.Second)
	if u.Minute() != 0 || u.Second() != 0 {
		return false
	}
	switch s.Unit {
	case StepUnitHour:
		return true
	case StepUnitDay:
		return u.Hour() == 0
	case StepUnitMonth:
		return u.Hour() == 0 && u.Day() == 1
	case StepUnitYear:
		return u.Hour() == 0 && u.Day() == 1 && u.Month() == time.January
	default:
		return false
	}
}

// Floor truncates t, in UTC, down to the nearest boundary of the step unit
func (s StepSize) Floor(t time.Time) time.Time {
	u := t.UTC()
	switch s.Unit {
	case StepUnitHour:
		return u.Truncate(time.Hour)
	case StepUnitDay:
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	case StepUnitMonth:
		return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	case StepUnitYear:
		return time.Date(u.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return u
	}
}

// MeasurementField names the property carrying the measured value for a
// series of this granularity
func (s StepSize) MeasurementField() string {
	switch s.Unit {
	case StepUnitDay:
		return "dailyEnergy"
	case StepUnitMonth:
		return "monthlyEnergy"
	case StepUnitYear:
		return "yearlyEnergy"
	default:
		return "instantaneousValue"
	}
}

// String renders the step as "1 hour", "3 day" etc.
func (s StepSize) String() string {
	return fmt.Sprintf("%d %s", s.Count, s.Unit)
}

// MarshalText implements encoding.TextMarshaler
func (s StepSize) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d%s", s.Count, s.Unit)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig and JSON
func (s *StepSize) UnmarshalText(text []byte) error {
	step, err := ParseStepSize(string(text))
	if err != nil {
		return err
	}
	*s = step
	return nil
}

// PlaybackInstant is the displayed instant and the step at which time moves
type PlaybackInstant struct {
	Current  time.Time
	StepSize StepSize
}

type playbackInstantJSON struct {
	Current  string   `json:"current"`
	StepSize StepSize `json:"stepSize"`
}

// Advance returns the instant one step later
func (p PlaybackInstant) Advance() PlaybackInstant {
	return PlaybackInstant{Current: p.StepSize.Next(p.Current), StepSize: p.StepSize}
}

// MarshalJSON renders the current time in the instant format
func (p PlaybackInstant) MarshalJSON() ([]byte, error) {
	return json.Marshal(playbackInstantJSON{Current: InstantString(p.Current), StepSize: p.StepSize})
}

// UnmarshalJSON accepts any RFC 3339 current time
func (p *PlaybackInstant) UnmarshalJSON(data []byte) error {
	var raw playbackInstantJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	current, err := ParseTimestamp(raw.Current)
	if err != nil {
		return err
	}
	p.Current = current
	p.StepSize = raw.StepSize
	return nil
}
