package scheduling

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/workforce-service/internal/domain"
)

var overtimeMultiplier = decimal.NewFromFloat(1.5)

type slotKey struct {
	date string
	hour int
}

type slot struct {
	required   int
	volume     int
	weightedSL float64
	scheduled  int
}

// MetricsInput is everything needed to score a schedule.
type MetricsInput struct {
	Shifts      []domain.Shift
	Forecasts   []domain.ForecastRecord
	Agents      map[string]domain.Agent
	Constraints domain.ScheduleConstraints
}

// ComputeMetrics derives coverage, achieved service level and labor cost.
func ComputeMetrics(in MetricsInput) domain.ScheduleMetrics {
	slots := make(map[slotKey]*slot)
	for _, f := range in.Forecasts {
		k := slotKey{date: domain.DateKey(f.Date), hour: f.Hour}
		s := slots[k]
		if s == nil {
			s = &slot{}
			slots[k] = s
		}
		s.required += f.RequiredAgents
		s.volume += f.PredictedVolume
		s.weightedSL += f.PredictedServiceLevel * float64(max(1, f.PredictedVolume))
	}
	for _, sh := range in.Shifts {
		for k, s := range slots {
			if k.date == domain.DateKey(sh.Date) && sh.Covers(k.hour) {
				s.scheduled++
			}
		}
	}

	var (
		required, covered int
		slSum, slWeight   float64
	)
	for _, s := range slots {
		required += s.required
		covered += min(s.scheduled, s.required)

		ratio := 1.0
		if s.required > 0 {
			ratio = min(1, float64(s.scheduled)/float64(s.required))
		}
		weight := float64(max(1, s.volume))
		baseSL := s.weightedSL / weight
		slSum += baseSL * ratio * weight
		slWeight += weight
	}

	m := domain.ScheduleMetrics{
		TotalShifts:        len(in.Shifts),
		CoveragePercentage: 100,
		TotalLaborCost:     decimal.Zero,
	}
	if required > 0 {
		m.CoveragePercentage = float64(covered) / float64(required) * 100
	}
	if slWeight > 0 {
		m.AchievedServiceLevel = slSum / slWeight
	}

	for _, sh := range in.Shifts {
		m.TotalScheduledHours += sh.Duration().Hours()
		agent, ok := in.Agents[sh.AgentID]
		if !ok {
			continue
		}
		m.TotalLaborCost = m.TotalLaborCost.Add(ShiftCost(sh, agent.HourlyRate, in.Constraints))
	}
	m.TotalLaborCost = m.TotalLaborCost.Round(2)
	return m
}

// ShiftCost prices a shift's paid hours. Lunch is unpaid; hours beyond the
// daily limit, or every hour of an overtime shift, earn the overtime rate.
func ShiftCost(sh domain.Shift, rate decimal.Decimal, c domain.ScheduleConstraints) decimal.Decimal {
	paid := (sh.Duration() - sh.LunchDuration()).Hours()
	if paid <= 0 {
		return decimal.Zero
	}
	paidHours := decimal.NewFromFloat(paid)
	if sh.Type == domain.ShiftTypeOvertime {
		return paidHours.Mul(rate).Mul(overtimeMultiplier)
	}

	regular := paid
	if c.MaxHoursPerDay > 0 && paid > c.MaxHoursPerDay {
		regular = c.MaxHoursPerDay
	}
	extra := paid - regular

	cost := decimal.NewFromFloat(regular).Mul(rate)
	if extra > 0 {
		cost = cost.Add(decimal.NewFromFloat(extra).Mul(rate).Mul(overtimeMultiplier))
	}
	return cost
}

// HourlyStaffing counts shifts on duty at the start of each hour of date.
func HourlyStaffing(shifts []domain.Shift, date time.Time) map[int]int {
	out := make(map[int]int)
	key := domain.DateKey(date)
	for _, sh := range shifts {
		if domain.DateKey(sh.Date) != key {
			continue
		}
		for h := 0; h < 24; h++ {
			if sh.Covers(h) {
				out[h]++
			}
		}
	}
	return out
}
