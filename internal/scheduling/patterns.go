// Package scheduling turns hourly staffing requirements into agent shifts.
package scheduling

import (
	"math"
	"sort"
	"time"

	"github.com/spec-kit/workforce-service/internal/domain"
)

const peakHourShare = 0.3

// ShiftTemplate is a candidate same-day working window.
type ShiftTemplate struct {
	Name  string
	Start domain.ClockTime
	End   domain.ClockTime
	Type  domain.ShiftType
}

// Duration returns the template length.
func (t ShiftTemplate) Duration() time.Duration {
	return time.Duration(t.End-t.Start) * time.Minute
}

// Hours returns the template length in hours.
func (t ShiftTemplate) Hours() float64 {
	return t.Duration().Hours()
}

// Contains reports whether the hour start lies in [Start, End).
func (t ShiftTemplate) Contains(hour int) bool {
	at := domain.ClockTime(hour * 60)
	return at >= t.Start && at < t.End
}

// HourlyRequirement is the aggregate demand for one hour across channels.
type HourlyRequirement struct {
	TotalAgents int
	TotalVolume int
}

// RankedTemplate is a template with its peak-overlap priority.
type RankedTemplate struct {
	ShiftTemplate
	Priority int
}

// DefaultCatalog returns the standard and part-time shift windows.
func DefaultCatalog() []ShiftTemplate {
	return []ShiftTemplate{
		{Name: "standard-0800", Start: domain.MustClockTime("08:00"), End: domain.MustClockTime("16:00"), Type: domain.ShiftTypeRegular},
		{Name: "standard-0900", Start: domain.MustClockTime("09:00"), End: domain.MustClockTime("17:00"), Type: domain.ShiftTypeRegular},
		{Name: "standard-1000", Start: domain.MustClockTime("10:00"), End: domain.MustClockTime("18:00"), Type: domain.ShiftTypeRegular},
		{Name: "standard-1200", Start: domain.MustClockTime("12:00"), End: domain.MustClockTime("20:00"), Type: domain.ShiftTypeRegular},
		{Name: "standard-1400", Start: domain.MustClockTime("14:00"), End: domain.MustClockTime("22:00"), Type: domain.ShiftTypeRegular},
		{Name: "part-time-0800", Start: domain.MustClockTime("08:00"), End: domain.MustClockTime("12:00"), Type: domain.ShiftTypePartTime},
		{Name: "part-time-1300", Start: domain.MustClockTime("13:00"), End: domain.MustClockTime("17:00"), Type: domain.ShiftTypePartTime},
		{Name: "part-time-1800", Start: domain.MustClockTime("18:00"), End: domain.MustClockTime("22:00"), Type: domain.ShiftTypePartTime},
	}
}

// PeakHours returns the top 30% of hours by required agents. Ties go to
// the earlier hour.
func PeakHours(reqs map[int]HourlyRequirement) []int {
	hours := make([]int, 0, len(reqs))
	for h := range reqs {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		ai, aj := reqs[hours[i]].TotalAgents, reqs[hours[j]].TotalAgents
		if ai != aj {
			return ai > aj
		}
		return hours[i] < hours[j]
	})
	count := int(math.Ceil(float64(len(hours)) * peakHourShare))
	return hours[:count]
}

// GeneratePatterns ranks catalog templates by how many peak hours they cover.
// Templates longer than the daily hour limit are left out.
func GeneratePatterns(reqs map[int]HourlyRequirement, catalog []ShiftTemplate, constraints domain.ScheduleConstraints) []RankedTemplate {
	if len(reqs) == 0 {
		return nil
	}
	peaks := PeakHours(reqs)

	ranked := make([]RankedTemplate, 0, len(catalog))
	for _, tpl := range catalog {
		if tpl.End <= tpl.Start {
			continue
		}
		if constraints.MaxHoursPerDay > 0 && tpl.Hours() > constraints.MaxHoursPerDay {
			continue
		}
		priority := 0
		for _, h := range peaks {
			if tpl.Contains(h) {
				priority++
			}
		}
		ranked = append(ranked, RankedTemplate{ShiftTemplate: tpl, Priority: priority})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})
	return ranked
}
