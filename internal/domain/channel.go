package domain

import (
	"errors"
	"time"
)

// ServiceType enumerates contact channel kinds.
type ServiceType string

const (
	ServiceTypeVoiceInbound  ServiceType = "voice_inbound"
	ServiceTypeVoiceOutbound ServiceType = "voice_outbound"
	ServiceTypeChat          ServiceType = "chat"
	ServiceTypeEmail         ServiceType = "email"
	ServiceTypeSMS           ServiceType = "sms"
)

var (
	ErrOperatingHours = errors.New("operating hours start must be before end")
	ErrShrinkage      = errors.New("shrinkage factor must be in [0,1)")
	ErrServiceLevel   = errors.New("service level target must be in [0,1]")
	ErrMinStaffing    = errors.New("minimum staffing level must not be negative")
)

// Channel is a contact channel with its service parameters.
type Channel struct {
	ID                      string
	Name                    string
	ServiceType             ServiceType
	OperatingHoursStart     ClockTime
	OperatingHoursEnd       ClockTime
	AverageHandleTime       float64 // minutes
	WrapUpTime              float64 // minutes
	ServiceLevelTarget      float64
	ServiceLevelThreshold   int // seconds
	ShrinkageFactor         float64
	MinStaffingLevel        int
	PreferredStaffingBuffer float64
	RequiredSkills          []string
	SkillHandleTimes        map[string]float64
	Active                  bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Validate checks the channel invariants.
func (c *Channel) Validate() error {
	if c.OperatingHoursStart >= c.OperatingHoursEnd {
		return ErrOperatingHours
	}
	if c.ShrinkageFactor < 0 || c.ShrinkageFactor >= 1 {
		return ErrShrinkage
	}
	if c.ServiceLevelTarget < 0 || c.ServiceLevelTarget > 1 {
		return ErrServiceLevel
	}
	if c.MinStaffingLevel < 0 {
		return ErrMinStaffing
	}
	return nil
}

// OpenDuring reports whether the hour [h, h+1) overlaps the operating window.
func (c *Channel) OpenDuring(hour int) bool {
	from := ClockTime(hour * 60)
	to := ClockTime((hour + 1) * 60)
	return to > c.OperatingHoursStart && from < c.OperatingHoursEnd
}

// HandleTimeFor returns the average handle time, honoring a per-skill override.
func (c *Channel) HandleTimeFor(skill *string) float64 {
	if skill != nil {
		if aht, ok := c.SkillHandleTimes[*skill]; ok && aht > 0 {
			return aht
		}
	}
	return c.AverageHandleTime
}
