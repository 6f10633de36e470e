package domain

import "time"

// ShiftType classifies generated shifts.
type ShiftType string

const (
	ShiftTypeRegular  ShiftType = "regular"
	ShiftTypeOvertime ShiftType = "overtime"
	ShiftTypePartTime ShiftType = "part_time"
)

// BreakKind differentiates short breaks from lunch.
type BreakKind string

const (
	BreakKindBreak BreakKind = "break"
	BreakKindLunch BreakKind = "lunch"
)

// Break is a rest window inside a shift.
type Break struct {
	Kind  BreakKind `json:"kind"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the break length.
func (b Break) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// Shift is a concrete agent assignment within a schedule.
type Shift struct {
	ID                 string
	ScheduleID         string
	AgentID            string
	Date               time.Time
	StartTime          time.Time
	EndTime            time.Time
	Type               ShiftType
	PrimaryChannelID   string
	SecondaryChannelID *string
	RequiredSkills     []string
	Breaks             []Break
	ExpectedVolume     int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Duration returns the shift length; an end at or before the start is read
// as crossing midnight.
func (s *Shift) Duration() time.Duration {
	return ShiftDuration(s.StartTime, s.EndTime)
}

// ShiftDuration computes end-start, rolling end into the next day when needed.
func ShiftDuration(start, end time.Time) time.Duration {
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return end.Sub(start)
}

// Covers reports whether the shift is on duty at the start of the hour.
func (s *Shift) Covers(hour int) bool {
	at := DateOnly(s.Date).Add(time.Duration(hour) * time.Hour)
	return !at.Before(s.StartTime) && at.Before(s.StartTime.Add(s.Duration()))
}

// LunchDuration sums unpaid lunch windows.
func (s *Shift) LunchDuration() time.Duration {
	var total time.Duration
	for _, b := range s.Breaks {
		if b.Kind == BreakKindLunch {
			total += b.Duration()
		}
	}
	return total
}
