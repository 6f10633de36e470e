package scheduling

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/workforce-service/internal/domain"
)

func shift(agentID, from, to string, kind domain.ShiftType, breaks ...domain.Break) domain.Shift {
	return domain.Shift{
		AgentID:   agentID,
		Date:      monday,
		StartTime: at(from),
		EndTime:   at(to),
		Type:      kind,
		Breaks:    breaks,
	}
}

func hourlyForecasts(from, to, required, volume int, sl float64) []domain.ForecastRecord {
	var out []domain.ForecastRecord
	for h := from; h <= to; h++ {
		out = append(out, domain.ForecastRecord{
			ChannelID:             "voice",
			Date:                  monday,
			Hour:                  h,
			RequiredAgents:        required,
			PredictedVolume:       volume,
			PredictedServiceLevel: sl,
		})
	}
	return out
}

func TestComputeMetricsHalfCoverage(t *testing.T) {
	rated := agent("a", 4, 0.8)
	rated.HourlyRate = decimal.NewFromInt(20)

	m := ComputeMetrics(MetricsInput{
		Shifts:      []domain.Shift{shift("a", "08:00", "12:00", domain.ShiftTypePartTime)},
		Forecasts:   hourlyForecasts(8, 11, 2, 20, 0.8),
		Agents:      map[string]domain.Agent{"a": rated},
		Constraints: domain.DefaultConstraints(),
	})

	assert.Equal(t, 1, m.TotalShifts)
	assert.InDelta(t, 50.0, m.CoveragePercentage, 1e-9)
	assert.InDelta(t, 0.4, m.AchievedServiceLevel, 1e-9)
	assert.InDelta(t, 4.0, m.TotalScheduledHours, 1e-9)
	assert.True(t, decimal.NewFromInt(80).Equal(m.TotalLaborCost), m.TotalLaborCost.String())
}

func TestComputeMetricsWithoutDemand(t *testing.T) {
	m := ComputeMetrics(MetricsInput{Constraints: domain.DefaultConstraints()})
	assert.Equal(t, 100.0, m.CoveragePercentage)
	assert.Zero(t, m.AchievedServiceLevel)
	assert.True(t, m.TotalLaborCost.IsZero())
}

func TestComputeMetricsCoverageCapsAtRequirement(t *testing.T) {
	m := ComputeMetrics(MetricsInput{
		Shifts: []domain.Shift{
			shift("a", "08:00", "12:00", domain.ShiftTypePartTime),
			shift("b", "08:00", "12:00", domain.ShiftTypePartTime),
			shift("c", "08:00", "12:00", domain.ShiftTypePartTime),
		},
		Forecasts:   hourlyForecasts(8, 11, 2, 20, 0.8),
		Constraints: domain.DefaultConstraints(),
	})
	assert.InDelta(t, 100.0, m.CoveragePercentage, 1e-9)
	assert.InDelta(t, 0.8, m.AchievedServiceLevel, 1e-9)
}

func TestShiftCost(t *testing.T) {
	rate := decimal.NewFromInt(20)
	lunch := domain.Break{Kind: domain.BreakKindLunch, Start: at("11:30"), End: at("12:30")}

	tests := []struct {
		name        string
		shift       domain.Shift
		constraints domain.ScheduleConstraints
		expected    int64
	}{
		{
			name:        "lunch is unpaid",
			shift:       shift("a", "08:00", "16:00", domain.ShiftTypeRegular, lunch),
			constraints: domain.DefaultConstraints(),
			expected:    140,
		},
		{
			name:        "overtime shift pays the premium throughout",
			shift:       shift("a", "08:00", "12:00", domain.ShiftTypeOvertime),
			constraints: domain.DefaultConstraints(),
			expected:    120,
		},
		{
			name:        "hours past the daily limit pay the premium",
			shift:       shift("a", "08:00", "18:00", domain.ShiftTypeRegular),
			constraints: domain.DefaultConstraints(),
			expected:    220,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShiftCost(tt.shift, rate, tt.constraints)
			assert.True(t, decimal.NewFromInt(tt.expected).Equal(got), got.String())
		})
	}
}

func TestHourlyStaffing(t *testing.T) {
	shifts := []domain.Shift{
		shift("a", "08:00", "12:00", domain.ShiftTypePartTime),
		shift("b", "10:00", "18:00", domain.ShiftTypeRegular),
	}
	got := HourlyStaffing(shifts, monday)

	assert.Equal(t, 1, got[8])
	assert.Equal(t, 2, got[10])
	assert.Equal(t, 2, got[11])
	assert.Equal(t, 1, got[12])
	assert.Equal(t, 0, got[18])
	assert.Empty(t, HourlyStaffing(shifts, friday))
}
