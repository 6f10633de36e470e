package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/scheduling"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

// Opportunity is the gap between forecast demand and staffing for one hour.
// A negative deviation means the hour is understaffed.
type Opportunity struct {
	Hour      int `json:"hour"`
	Required  int `json:"required"`
	Scheduled int `json:"scheduled"`
	Deviation int `json:"deviation"`
}

// Understaffed reports whether more agents are needed.
func (o Opportunity) Understaffed() bool {
	return o.Deviation < 0
}

// IntradayPlan is the working state a handler may change. Shifts holds every
// shift of the schedule; handlers edit entries in place.
type IntradayPlan struct {
	Schedule *domain.Schedule
	Date     time.Time
	Shifts   []domain.Shift
}

// OpportunityHandler applies one opportunity. It reports whether the plan
// changed.
type OpportunityHandler interface {
	Handle(ctx context.Context, plan *IntradayPlan, opp Opportunity) (bool, error)
}

// ReoptimizationResult reports one ReoptimizeIntraday run.
type ReoptimizationResult struct {
	ScheduleID    string        `json:"schedule_id"`
	Date          time.Time     `json:"date"`
	Opportunities []Opportunity `json:"opportunities"`
	Applied       int           `json:"applied"`
	Unchanged     int           `json:"unchanged"`
	Failed        int           `json:"failed"`
}

// ReoptimizeSummary reports one ReoptimizeActive run.
type ReoptimizeSummary struct {
	Schedules     int
	Succeeded     int
	Failed        int
	Opportunities int
	Applied       int
	CompletedAt   time.Time
}

// ReoptimizeIntraday compares the day's staffing with its forecasts and
// applies each resulting opportunity on its own. A failing opportunity is
// counted and the rest still run.
func (s *ScheduleService) ReoptimizeIntraday(ctx context.Context, scheduleID string, date time.Time) (*ReoptimizationResult, error) {
	schedule, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	date = domain.DateOnly(date)
	if !schedule.Includes(date) {
		return nil, apperrors.NewValidationError("date outside schedule period", map[string]any{
			"schedule_id": scheduleID,
			"date":        domain.DateKey(date),
		})
	}

	shifts, err := s.shifts.ListBySchedule(ctx, scheduleID, nil)
	if err != nil {
		return nil, err
	}
	forecasts, err := s.forecasts.List(ctx, repository.ForecastFilter{ChannelIDs: schedule.ChannelIDs, Date: &date})
	if err != nil {
		return nil, err
	}

	plan := &IntradayPlan{Schedule: schedule, Date: date, Shifts: shifts}
	result := &ReoptimizationResult{
		ScheduleID:    scheduleID,
		Date:          date,
		Opportunities: findOpportunities(shifts, forecasts, date),
	}
	logger := s.logger.With(zap.String("schedule_id", scheduleID), zap.String("date", domain.DateKey(date)))

	for _, opp := range result.Opportunities {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		changed, err := s.opportunity.Handle(ctx, plan, opp)
		switch {
		case err != nil:
			result.Failed++
			logger.Warn("opportunity failed", zap.Int("hour", opp.Hour), zap.Int("deviation", opp.Deviation), zap.Error(err))
		case changed:
			result.Applied++
		default:
			result.Unchanged++
		}
	}

	if result.Applied > 0 {
		if err := s.refreshMetrics(ctx, schedule, plan.Shifts); err != nil {
			logger.Warn("metrics refresh failed", zap.Error(err))
		}
	}

	logger.Info("intraday reoptimization complete",
		zap.Int("opportunities", len(result.Opportunities)),
		zap.Int("applied", result.Applied),
		zap.Int("failed", result.Failed))
	return result, nil
}

// ReoptimizeActive runs intraday reoptimization for today on every active
// schedule. Schedules fail independently.
func (s *ScheduleService) ReoptimizeActive(ctx context.Context) (*ReoptimizeSummary, error) {
	today := domain.DateOnly(s.now())
	schedules, err := s.schedules.ListActive(ctx, today)
	if err != nil {
		return nil, err
	}

	summary := &ReoptimizeSummary{Schedules: len(schedules)}
	for _, schedule := range schedules {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		res, err := s.ReoptimizeIntraday(ctx, schedule.ID, today)
		if err != nil {
			summary.Failed++
			s.logger.Error("schedule reoptimization failed", zap.String("schedule_id", schedule.ID), zap.Error(err))
			continue
		}
		summary.Succeeded++
		summary.Opportunities += len(res.Opportunities)
		summary.Applied += res.Applied
	}
	summary.CompletedAt = s.now()

	s.publish(ctx, events.NewEvent(events.EventSchedulesOptimized, "", summary.CompletedAt, events.SchedulesOptimizedPayload{
		Schedules:     summary.Schedules,
		Succeeded:     summary.Succeeded,
		Failed:        summary.Failed,
		Opportunities: summary.Opportunities,
		Applied:       summary.Applied,
	}))
	return summary, nil
}

func (s *ScheduleService) refreshMetrics(ctx context.Context, schedule *domain.Schedule, shifts []domain.Shift) error {
	forecasts, err := s.forecasts.List(ctx, repository.ForecastFilter{
		ChannelIDs: schedule.ChannelIDs,
		From:       &schedule.StartDate,
		To:         &schedule.EndDate,
	})
	if err != nil {
		return err
	}
	agentIDs := make([]string, 0, len(shifts))
	seen := make(map[string]struct{})
	for _, sh := range shifts {
		if _, ok := seen[sh.AgentID]; !ok {
			seen[sh.AgentID] = struct{}{}
			agentIDs = append(agentIDs, sh.AgentID)
		}
	}
	agents := map[string]domain.Agent{}
	if len(agentIDs) > 0 {
		list, err := s.agents.ListActive(ctx, agentIDs)
		if err != nil {
			return err
		}
		for _, a := range list {
			agents[a.ID] = a
		}
	}
	schedule.Metrics = scheduling.ComputeMetrics(scheduling.MetricsInput{
		Shifts:      shifts,
		Forecasts:   forecasts,
		Agents:      agents,
		Constraints: schedule.Constraints,
	})
	return s.schedules.Update(ctx, schedule)
}

// findOpportunities lists every hour of date whose staffing differs from
// the summed forecast requirement, in hour order.
func findOpportunities(shifts []domain.Shift, forecasts []domain.ForecastRecord, date time.Time) []Opportunity {
	staffed := scheduling.HourlyStaffing(shifts, date)
	required := make(map[int]int)
	for _, f := range forecasts {
		if domain.DateKey(f.Date) == domain.DateKey(date) {
			required[f.Hour] += f.RequiredAgents
		}
	}

	hours := make(map[int]int, len(required)+len(staffed))
	for h := range required {
		hours[h] = 0
	}
	for h := range staffed {
		hours[h] = 0
	}

	var out []Opportunity
	for _, h := range sortedHours(hours) {
		deviation := staffed[h] - required[h]
		if deviation == 0 {
			continue
		}
		out = append(out, Opportunity{Hour: h, Required: required[h], Scheduled: staffed[h], Deviation: deviation})
	}
	return out
}

// ExtendShiftHandler covers an understaffed hour by extending, by one hour,
// a shift that ends exactly when the hour starts. The extension must stay
// within the agent's daily and weekly hour limits and keep the rest gap to
// the agent's other shifts.
type ExtendShiftHandler struct {
	Shifts repository.ShiftRepository
	Agents repository.AgentRepository
}

func (h *ExtendShiftHandler) Handle(ctx context.Context, plan *IntradayPlan, opp Opportunity) (bool, error) {
	if !opp.Understaffed() || opp.Hour >= 23 {
		return false, nil
	}
	c := plan.Schedule.Constraints
	boundary := plan.Date.Add(time.Duration(opp.Hour) * time.Hour)
	gap := time.Duration(c.MinTimeBetweenShifts * float64(time.Hour))

	for i := range plan.Shifts {
		sh := &plan.Shifts[i]
		if domain.DateKey(sh.Date) != domain.DateKey(plan.Date) {
			continue
		}
		if !sh.StartTime.Add(sh.Duration()).Equal(boundary) {
			continue
		}
		agent, err := h.Agents.GetByID(ctx, sh.AgentID)
		if err != nil {
			return false, err
		}
		extended := sh.Duration() + time.Hour
		if extended.Hours() > scheduling.DailyLimit(*agent, c) {
			continue
		}
		others := ledgerExcluding(plan.Shifts, i)
		if others.WeeklyHours(sh.AgentID, plan.Date)+extended.Hours() > scheduling.WeeklyLimit(*agent, c) {
			continue
		}
		if !others.RestSatisfied(sh.AgentID, sh.StartTime, sh.StartTime.Add(extended), gap) {
			continue
		}

		original := *sh
		sh.EndTime = sh.StartTime.Add(extended)
		sh.Breaks = scheduling.PlaceBreaks(sh.StartTime, sh.EndTime, c)
		if err := h.Shifts.Update(ctx, sh); err != nil {
			*sh = original
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// ledgerExcluding books every shift except shifts[skip].
func ledgerExcluding(shifts []domain.Shift, skip int) *scheduling.Ledger {
	ledger := scheduling.NewLedger()
	for i, sh := range shifts {
		if i != skip {
			ledger.RecordShift(sh)
		}
	}
	return ledger
}
