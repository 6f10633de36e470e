// Package forecasting holds the pure demand and staffing models.
package forecasting

import (
	"time"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// Factors are the multiplicative seasonal adjustments for one date/hour.
// Trend stays separate so callers can apply it independently.
type Factors struct {
	Seasonal float64
	Trend    float64
}

// ExternalFactors adjust demand for non-seasonal causes. 1.0 means no effect.
type ExternalFactors struct {
	Holiday      float64
	Weather      float64
	SpecialEvent float64
}

// NeutralExternal is the no-effect external factor set.
var NeutralExternal = ExternalFactors{Holiday: 1, Weather: 1, SpecialEvent: 1}

// MonthDay identifies a recurring calendar day.
type MonthDay struct {
	Month time.Month
	Day   int
}

// SeasonalModel produces deterministic demand multipliers.
type SeasonalModel struct {
	DayOfWeek [7]float64 // index 0 = Sunday
	HourOfDay [24]float64
	Month     [12]float64 // index 0 = January
	Trend     float64

	Holidays map[MonthDay]float64

	// Overrides supplies weather and special-event multipliers per date (YYYY-MM-DD).
	Overrides map[string]ExternalFactors
}

// NewSeasonalModel returns the reference contact-center seasonality.
func NewSeasonalModel() *SeasonalModel {
	return &SeasonalModel{
		DayOfWeek: [7]float64{0.6, 1.2, 1.1, 1.0, 1.0, 0.9, 0.7},
		HourOfDay: [24]float64{
			0.1, 0.1, 0.1, 0.1, 0.1, 0.2, // 00-05
			0.4, 0.7, 1.0, 1.2, 1.3, 1.3, // 06-11
			1.1, 1.2, 1.3, 1.2, 1.1, 1.0, // 12-17
			0.8, 0.6, 0.5, 0.4, 0.3, 0.2, // 18-23
		},
		Month:    [12]float64{1.1, 1.0, 1.0, 0.95, 0.95, 0.9, 0.85, 0.9, 1.0, 1.05, 1.1, 1.2},
		Trend:    1.02,
		Holidays: DefaultHolidays(),
	}
}

// NewFlatSeasonalModel returns a model whose factors are all 1.0.
func NewFlatSeasonalModel() *SeasonalModel {
	m := &SeasonalModel{Trend: 1, Holidays: map[MonthDay]float64{}}
	for i := range m.DayOfWeek {
		m.DayOfWeek[i] = 1
	}
	for i := range m.HourOfDay {
		m.HourOfDay[i] = 1
	}
	for i := range m.Month {
		m.Month[i] = 1
	}
	return m
}

// DefaultHolidays lists the fixed-date holidays with reduced demand.
func DefaultHolidays() map[MonthDay]float64 {
	return map[MonthDay]float64{
		{Month: time.January, Day: 1}:   0.3,
		{Month: time.July, Day: 4}:      0.3,
		{Month: time.December, Day: 25}: 0.3,
	}
}

// Factors returns the seasonal product and trend for the date/hour.
func (m *SeasonalModel) Factors(date time.Time, hour int) Factors {
	if hour < 0 || hour > 23 {
		hour = ((hour % 24) + 24) % 24
	}
	seasonal := m.DayOfWeek[int(date.Weekday())] *
		m.HourOfDay[hour] *
		m.Month[int(date.Month())-1]
	return Factors{Seasonal: seasonal, Trend: m.Trend}
}

// ExternalFactors returns holiday, weather and special-event multipliers.
func (m *SeasonalModel) ExternalFactors(date time.Time, hour int) ExternalFactors {
	ext := NeutralExternal
	if override, ok := m.Overrides[domain.DateKey(date)]; ok {
		if override.Weather > 0 {
			ext.Weather = override.Weather
		}
		if override.SpecialEvent > 0 {
			ext.SpecialEvent = override.SpecialEvent
		}
		if override.Holiday > 0 {
			ext.Holiday = override.Holiday
		}
	}
	if factor, ok := m.Holidays[MonthDay{Month: date.Month(), Day: date.Day()}]; ok {
		ext.Holiday = factor
	}
	return ext
}

// IsHoliday reports whether date is one of the fixed holidays.
func (m *SeasonalModel) IsHoliday(date time.Time) bool {
	_, ok := m.Holidays[MonthDay{Month: date.Month(), Day: date.Day()}]
	return ok
}
