package domain

import (
	"errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// AgentStatus represents employment status.
type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "active"
	AgentStatusInactive AgentStatus = "inactive"
	AgentStatusOnLeave  AgentStatus = "on_leave"
)

// AgentPerformance holds observed performance attributes.
type AgentPerformance struct {
	AverageHandleTime float64 `json:"average_handle_time"`
	ResolutionRate    float64 `json:"resolution_rate"`
	SatisfactionScore float64 `json:"satisfaction_score"` // 0-5
}

var ErrAgentHours = errors.New("agent max hours per week must cover max hours per day")

// AgentFlexibility captures scheduling flexibility flags.
type AgentFlexibility struct {
	WeekendEligible  bool `json:"weekend_eligible"`
	HolidayEligible  bool `json:"holiday_eligible"`
	OvertimeEligible bool `json:"overtime_eligible"`
}

// Agent models a contact-center agent.
type Agent struct {
	ID              string
	Name            string
	Status          AgentStatus
	Skills          []string
	ChannelIDs      []string
	Performance     AgentPerformance
	Flexibility     AgentFlexibility
	MaxHoursPerDay  float64
	MaxHoursPerWeek float64
	HourlyRate      decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EligibleFor reports whether the agent may work the channel.
func (a *Agent) EligibleFor(channelID string) bool {
	return slices.Contains(a.ChannelIDs, channelID)
}

// HasSkill reports whether the agent holds the skill.
func (a *Agent) HasSkill(skill string) bool {
	return slices.Contains(a.Skills, skill)
}

// Validate checks the agent's hour limits. Zero means no personal limit.
func (a *Agent) Validate() error {
	if a.MaxHoursPerDay < 0 || a.MaxHoursPerWeek < 0 {
		return ErrAgentHours
	}
	if a.MaxHoursPerDay > 0 && a.MaxHoursPerWeek > 0 && a.MaxHoursPerWeek < a.MaxHoursPerDay {
		return ErrAgentHours
	}
	return nil
}

// EligibleForAny reports whether the agent may work at least one of the channels.
func (a *Agent) EligibleForAny(channelIDs []string) bool {
	return slices.ContainsFunc(channelIDs, a.EligibleFor)
}
