package dto

import (
	"time"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// CreateScheduleRequest payload.
type CreateScheduleRequest struct {
	Name        string                          `json:"name"`
	StartDate   string                          `json:"start_date"`
	EndDate     string                          `json:"end_date"`
	ChannelIDs  []string                        `json:"channel_ids"`
	AgentIDs    []string                        `json:"agent_ids"`
	Constraints *domain.ScheduleConstraints     `json:"constraints"`
	Preferences *domain.OptimizationPreferences `json:"preferences"`
}

// ReoptimizeRequest payload.
type ReoptimizeRequest struct {
	Date string `json:"date"`
}

// ScheduleResponse describes a schedule and its metrics.
type ScheduleResponse struct {
	ID          string                         `json:"id"`
	Name        string                         `json:"name"`
	StartDate   string                         `json:"start_date"`
	EndDate     string                         `json:"end_date"`
	ChannelIDs  []string                       `json:"channel_ids"`
	Status      string                         `json:"status"`
	Constraints domain.ScheduleConstraints     `json:"constraints"`
	Preferences domain.OptimizationPreferences `json:"preferences"`
	Metrics     ScheduleMetricsResponse        `json:"metrics"`
	CreatedAt   time.Time                      `json:"created_at"`
	UpdatedAt   time.Time                      `json:"updated_at"`
}

// ScheduleMetricsResponse renders labor cost as a fixed two-decimal string.
type ScheduleMetricsResponse struct {
	AchievedServiceLevel float64 `json:"achieved_service_level"`
	CoveragePercentage   float64 `json:"coverage_percentage"`
	TotalLaborCost       string  `json:"total_labor_cost"`
	TotalShifts          int     `json:"total_shifts"`
	TotalScheduledHours  float64 `json:"total_scheduled_hours"`
}

// ShiftResponse describes one shift.
type ShiftResponse struct {
	ID                 string          `json:"id"`
	AgentID            string          `json:"agent_id"`
	Date               string          `json:"date"`
	StartTime          time.Time       `json:"start_time"`
	EndTime            time.Time       `json:"end_time"`
	Type               string          `json:"type"`
	PrimaryChannelID   string          `json:"primary_channel_id"`
	SecondaryChannelID *string         `json:"secondary_channel_id,omitempty"`
	RequiredSkills     []string        `json:"required_skills"`
	Breaks             []BreakResponse `json:"breaks"`
	ExpectedVolume     int             `json:"expected_volume"`
}

// BreakResponse describes a break window.
type BreakResponse struct {
	Kind  string    `json:"kind"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// OpportunityResponse is one staffing gap.
type OpportunityResponse struct {
	Hour      int `json:"hour"`
	Required  int `json:"required"`
	Scheduled int `json:"scheduled"`
	Deviation int `json:"deviation"`
}

// ReoptimizeResponse reports an intraday reoptimization.
type ReoptimizeResponse struct {
	ScheduleID    string                `json:"schedule_id"`
	Date          string                `json:"date"`
	Opportunities []OpportunityResponse `json:"opportunities"`
	Applied       int                   `json:"applied"`
	Unchanged     int                   `json:"unchanged"`
	Failed        int                   `json:"failed"`
}
