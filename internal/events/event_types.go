package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventForecastUpdated    EventType = "forecast-updated"
	EventSchedulesOptimized EventType = "schedules-optimized"
	EventScheduleGenerated  EventType = "schedule-generated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(eventType EventType, subjectID string, at time.Time, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: at.UTC(),
		Payload:   payload,
	}
}

// ForecastUpdatedPayload summarizes a refresh run.
type ForecastUpdatedPayload struct {
	Channels  int `json:"channels"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Hours     int `json:"hours"`
}

// SchedulesOptimizedPayload summarizes a reoptimization run.
type SchedulesOptimizedPayload struct {
	Schedules     int `json:"schedules"`
	Succeeded     int `json:"succeeded"`
	Failed        int `json:"failed"`
	Opportunities int `json:"opportunities"`
	Applied       int `json:"applied"`
}

// ScheduleGeneratedPayload describes a newly generated schedule.
type ScheduleGeneratedPayload struct {
	Name                 string  `json:"name"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
	TotalShifts          int     `json:"total_shifts"`
	CoveragePercentage   float64 `json:"coverage_percentage"`
	AchievedServiceLevel float64 `json:"achieved_service_level"`
	TotalLaborCost       string  `json:"total_labor_cost"`
}
