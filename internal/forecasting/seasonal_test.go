package forecasting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/workforce-service/internal/forecasting"
)

func TestSeasonalFactorsIsTableProduct(t *testing.T) {
	m := forecasting.NewSeasonalModel()
	// Monday in March.
	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	f := m.Factors(date, 10)

	want := m.DayOfWeek[1] * m.HourOfDay[10] * m.Month[2]
	assert.InDelta(t, want, f.Seasonal, 1e-12)
	assert.Equal(t, 1.02, f.Trend)
}

func TestFlatModelIsNeutral(t *testing.T) {
	m := forecasting.NewFlatSeasonalModel()
	f := m.Factors(time.Date(2026, time.June, 13, 0, 0, 0, 0, time.UTC), 3)
	assert.Equal(t, forecasting.Factors{Seasonal: 1, Trend: 1}, f)
}

func TestExternalFactorsHoliday(t *testing.T) {
	m := forecasting.NewSeasonalModel()

	tests := map[string]struct {
		date    time.Time
		holiday float64
	}{
		"christmas":      {date: time.Date(2026, time.December, 25, 0, 0, 0, 0, time.UTC), holiday: 0.3},
		"christmas eve":  {date: time.Date(2026, time.December, 24, 0, 0, 0, 0, time.UTC), holiday: 1.0},
		"ordinary day":   {date: time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), holiday: 1.0},
		"25th elsewhere": {date: time.Date(2026, time.November, 25, 0, 0, 0, 0, time.UTC), holiday: 1.0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ext := m.ExternalFactors(tc.date, 12)
			assert.Equal(t, tc.holiday, ext.Holiday)
			assert.Equal(t, 1.0, ext.Weather)
			assert.Equal(t, 1.0, ext.SpecialEvent)
		})
	}
}

func TestExternalFactorsOverrides(t *testing.T) {
	m := forecasting.NewSeasonalModel()
	m.Overrides = map[string]forecasting.ExternalFactors{
		"2026-03-10": {Weather: 1.4, SpecialEvent: 2},
	}

	ext := m.ExternalFactors(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), 9)
	assert.Equal(t, forecasting.ExternalFactors{Holiday: 1, Weather: 1.4, SpecialEvent: 2}, ext)
	assert.False(t, m.IsHoliday(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, m.IsHoliday(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)))
}
