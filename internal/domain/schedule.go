package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleStatus enumerates schedule lifecycle states.
type ScheduleStatus string

const (
	ScheduleStatusDraft     ScheduleStatus = "draft"
	ScheduleStatusGenerated ScheduleStatus = "generated"
	ScheduleStatusPublished ScheduleStatus = "published"
	ScheduleStatusActive    ScheduleStatus = "active"
	ScheduleStatusCompleted ScheduleStatus = "completed"
)

// ScheduleConstraints bounds what the assignment engine may produce.
type ScheduleConstraints struct {
	MaxConsecutiveDays   int     `json:"max_consecutive_days"`
	MinDaysOffPerWeek    int     `json:"min_days_off_per_week"`
	MaxHoursPerDay       float64 `json:"max_hours_per_day"`
	MaxHoursPerWeek      float64 `json:"max_hours_per_week"`
	MinBreakDuration     int     `json:"min_break_duration"`      // minutes
	LunchBreakDuration   int     `json:"lunch_break_duration"`    // minutes
	MinTimeBetweenShifts float64 `json:"min_time_between_shifts"` // hours
}

// DefaultConstraints returns the standard labor constraint set.
func DefaultConstraints() ScheduleConstraints {
	return ScheduleConstraints{
		MaxConsecutiveDays:   5,
		MinDaysOffPerWeek:    2,
		MaxHoursPerDay:       8,
		MaxHoursPerWeek:      40,
		MinBreakDuration:     30,
		LunchBreakDuration:   60,
		MinTimeBetweenShifts: 8,
	}
}

// OptimizationPreferences toggles post-assignment passes.
type OptimizationPreferences struct {
	PrioritizeAgentPreferences bool `json:"prioritize_agent_preferences"`
	MinimizeOvertime           bool `json:"minimize_overtime"`
	BalanceWorkload            bool `json:"balance_workload"`
	OptimizeForServiceLevel    bool `json:"optimize_for_service_level"`
	AllowSplitShifts           bool `json:"allow_split_shifts"`
}

// DefaultPreferences enables every pass and disables split shifts.
func DefaultPreferences() OptimizationPreferences {
	return OptimizationPreferences{
		PrioritizeAgentPreferences: true,
		MinimizeOvertime:           true,
		BalanceWorkload:            true,
		OptimizeForServiceLevel:    true,
		AllowSplitShifts:           false,
	}
}

// ScheduleMetrics aggregates the quality of a generated schedule.
type ScheduleMetrics struct {
	AchievedServiceLevel float64         `json:"achieved_service_level"`
	CoveragePercentage   float64         `json:"coverage_percentage"`
	TotalLaborCost       decimal.Decimal `json:"total_labor_cost"`
	TotalShifts          int             `json:"total_shifts"`
	TotalScheduledHours  float64         `json:"total_scheduled_hours"`
}

// Schedule is a planning period and the shifts generated for it.
type Schedule struct {
	ID          string
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	ChannelIDs  []string
	Constraints ScheduleConstraints
	Preferences OptimizationPreferences
	Metrics     ScheduleMetrics
	Status      ScheduleStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Dates lists each calendar day in the inclusive period.
func (s *Schedule) Dates() []time.Time {
	var dates []time.Time
	end := DateOnly(s.EndDate)
	for d := DateOnly(s.StartDate); !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Includes reports whether date falls inside the period.
func (s *Schedule) Includes(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(s.StartDate)) && !d.After(DateOnly(s.EndDate))
}
