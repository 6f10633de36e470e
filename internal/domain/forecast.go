package domain

import "time"

// ForecastStatus enumerates review states of a forecast record.
type ForecastStatus string

const (
	ForecastStatusGenerated ForecastStatus = "generated"
	ForecastStatusReviewed  ForecastStatus = "reviewed"
	ForecastStatusApproved  ForecastStatus = "approved"
	ForecastStatusPublished ForecastStatus = "published"
	ForecastStatusArchived  ForecastStatus = "archived"
)

// VolumeSample is an observed contact volume for one day at one hour.
type VolumeSample struct {
	Date   time.Time
	Volume int
}

// ForecastRecord is the predicted demand and staffing for one channel hour.
type ForecastRecord struct {
	ID                    string
	ChannelID             string
	Skill                 *string
	Date                  time.Time
	Hour                  int
	PredictedVolume       int
	ConfidenceLevel       float64
	MinVolume             int
	MaxVolume             int
	RequiredAgents        int
	OptimalAgents         int
	MinimumAgents         int
	PredictedServiceLevel float64
	PredictedWaitTime     float64 // seconds
	SeasonalFactor        float64
	TrendFactor           float64
	HolidayFactor         float64
	WeatherFactor         float64
	SpecialEventFactor    float64
	ActualVolume          *int
	Status                ForecastStatus
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// SkillKey returns the skill or "" for skill-less forecasts.
func (f *ForecastRecord) SkillKey() string {
	if f.Skill == nil {
		return ""
	}
	return *f.Skill
}
