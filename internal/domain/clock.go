package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockTime is a time of day expressed in minutes since midnight.
type ClockTime int

// ParseClockTime parses "HH:MM".
func ParseClockTime(value string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(value, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", value, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	return ClockTime(h*60 + m), nil
}

// MustClockTime is ParseClockTime for constants.
func MustClockTime(value string) ClockTime {
	ct, err := ParseClockTime(value)
	if err != nil {
		panic(err)
	}
	return ct
}

// Hour returns the whole hour component.
func (c ClockTime) Hour() int {
	return int(c) / 60
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On anchors the clock time to the given calendar date.
func (c ClockTime) On(date time.Time) time.Time {
	d := DateOnly(date)
	return d.Add(time.Duration(c) * time.Minute)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats a date as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
