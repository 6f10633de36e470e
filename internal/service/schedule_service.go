package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/forecasting"
	"github.com/spec-kit/workforce-service/internal/observability"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/scheduling"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

// ScheduleService builds schedules from forecasts and keeps active ones
// aligned with current demand.
type ScheduleService struct {
	schedules   repository.ScheduleRepository
	shifts      repository.ShiftRepository
	agents      repository.AgentRepository
	channels    repository.ChannelRepository
	timeOff     repository.TimeOffRepository
	forecasts   repository.ForecastRepository
	model       *forecasting.SeasonalModel
	catalog     []scheduling.ShiftTemplate
	passes      scheduling.PassRegistry
	strategies  scheduling.Strategies
	opportunity OpportunityHandler
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// ScheduleDependencies bundles collaborators for the schedule service.
// Zero-valued strategy fields fall back to the package defaults.
type ScheduleDependencies struct {
	ScheduleRepo repository.ScheduleRepository
	ShiftRepo    repository.ShiftRepository
	AgentRepo    repository.AgentRepository
	ChannelRepo  repository.ChannelRepository
	TimeOffRepo  repository.TimeOffRepository
	ForecastRepo repository.ForecastRepository
	Model        *forecasting.SeasonalModel
	Catalog      []scheduling.ShiftTemplate
	Passes       scheduling.PassRegistry
	Strategies   *scheduling.Strategies
	Opportunity  OpportunityHandler
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	Now          func() time.Time
}

// GenerateScheduleInput describes a schedule request.
type GenerateScheduleInput struct {
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	ChannelIDs  []string
	AgentIDs    []string
	Constraints *domain.ScheduleConstraints
	Preferences *domain.OptimizationPreferences
}

// NewScheduleService constructs the service.
func NewScheduleService(deps ScheduleDependencies) *ScheduleService {
	svc := &ScheduleService{
		schedules:   deps.ScheduleRepo,
		shifts:      deps.ShiftRepo,
		agents:      deps.AgentRepo,
		channels:    deps.ChannelRepo,
		timeOff:     deps.TimeOffRepo,
		forecasts:   deps.ForecastRepo,
		model:       deps.Model,
		catalog:     deps.Catalog,
		passes:      deps.Passes,
		strategies:  scheduling.DefaultStrategies(),
		opportunity: deps.Opportunity,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		now:         deps.Now,
	}
	if svc.model == nil {
		svc.model = forecasting.NewSeasonalModel()
	}
	if len(svc.catalog) == 0 {
		svc.catalog = scheduling.DefaultCatalog()
	}
	if svc.passes == nil {
		svc.passes = scheduling.DefaultPasses()
	}
	if deps.Strategies != nil {
		svc.strategies = *deps.Strategies
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	svc.logger = svc.logger.With(zap.String("component", "schedule_service"))
	if svc.now == nil {
		svc.now = func() time.Time { return time.Now().UTC() }
	}
	if svc.opportunity == nil {
		svc.opportunity = &ExtendShiftHandler{Shifts: deps.ShiftRepo, Agents: deps.AgentRepo}
	}
	return svc
}

// Generate creates a schedule for the period and fills it with shifts.
// Load failures abort the run and leave only the draft record behind.
func (s *ScheduleService) Generate(ctx context.Context, input GenerateScheduleInput) (*domain.Schedule, error) {
	constraints := domain.DefaultConstraints()
	if input.Constraints != nil {
		constraints = *input.Constraints
	}
	prefs := domain.DefaultPreferences()
	if input.Preferences != nil {
		prefs = *input.Preferences
	}
	if err := validateScheduleInput(input, constraints); err != nil {
		return nil, err
	}

	schedule := &domain.Schedule{
		Name:        input.Name,
		StartDate:   domain.DateOnly(input.StartDate),
		EndDate:     domain.DateOnly(input.EndDate),
		ChannelIDs:  input.ChannelIDs,
		Constraints: constraints,
		Preferences: prefs,
		Status:      domain.ScheduleStatusDraft,
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, err
	}
	logger := s.logger.With(zap.String("schedule_id", schedule.ID))

	channels, err := s.loadChannels(ctx, schedule.ChannelIDs)
	if err != nil {
		return nil, err
	}
	agents, err := s.agents.ListActive(ctx, input.AgentIDs)
	if err != nil {
		return nil, err
	}
	agents = s.qualifiedAgents(agents, schedule.ChannelIDs, logger)
	agentIDs := make([]string, len(agents))
	agentByID := make(map[string]domain.Agent, len(agents))
	for i, a := range agents {
		agentIDs[i] = a.ID
		agentByID[a.ID] = a
	}
	timeOff, err := s.timeOff.ListApproved(ctx, agentIDs, schedule.StartDate, schedule.EndDate)
	if err != nil {
		return nil, err
	}
	forecasts, err := s.forecasts.List(ctx, repository.ForecastFilter{
		ChannelIDs: schedule.ChannelIDs,
		From:       &schedule.StartDate,
		To:         &schedule.EndDate,
	})
	if err != nil {
		return nil, err
	}

	byDate := groupForecasts(forecasts)
	engine := scheduling.NewAssignmentEngine(constraints, prefs, s.model.IsHoliday)
	ledger := scheduling.NewLedger()

	var assignments []scheduling.Assignment
	for _, date := range schedule.Dates() {
		dayForecasts := byDate[domain.DateKey(date)]
		reqs := hourlyRequirements(dayForecasts)
		if len(reqs) == 0 {
			logger.Debug("no demand for date", zap.String("date", domain.DateKey(date)))
			continue
		}
		available := scheduling.ExcludeTimeOff(agents, timeOff, date)
		templates := scheduling.GeneratePatterns(reqs, s.catalog, constraints)
		day := engine.Assign(date, templates, available, ledger)
		logger.Debug("assigned day",
			zap.String("date", domain.DateKey(date)),
			zap.Int("templates", len(templates)),
			zap.Int("assignments", len(day)))
		assignments = append(assignments, day...)
	}

	assignments = scheduling.ApplyPasses(assignments, scheduling.Pipeline(prefs, s.passes))

	shifts := make([]domain.Shift, 0, len(assignments))
	for _, a := range assignments {
		shift := s.buildShift(schedule.ID, a, agentByID[a.AgentID], channels, byDate[domain.DateKey(a.Date)], constraints)
		if err := s.shifts.Create(ctx, &shift); err != nil {
			logger.Error("shift persistence failed, schedule left in draft",
				zap.Int("persisted", len(shifts)),
				zap.Int("pending", len(assignments)-len(shifts)),
				zap.Error(err))
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	schedule.Metrics = scheduling.ComputeMetrics(scheduling.MetricsInput{
		Shifts:      shifts,
		Forecasts:   forecasts,
		Agents:      agentByID,
		Constraints: constraints,
	})
	schedule.Status = domain.ScheduleStatusGenerated
	if err := s.schedules.Update(ctx, schedule); err != nil {
		return nil, err
	}

	s.metrics.ObserveSchedule(schedule.Metrics.CoveragePercentage, schedule.Metrics.AchievedServiceLevel)
	s.publish(ctx, events.NewEvent(events.EventScheduleGenerated, schedule.ID, s.now(), events.ScheduleGeneratedPayload{
		Name:                 schedule.Name,
		StartDate:            domain.DateKey(schedule.StartDate),
		EndDate:              domain.DateKey(schedule.EndDate),
		TotalShifts:          schedule.Metrics.TotalShifts,
		CoveragePercentage:   schedule.Metrics.CoveragePercentage,
		AchievedServiceLevel: schedule.Metrics.AchievedServiceLevel,
		TotalLaborCost:       schedule.Metrics.TotalLaborCost.StringFixed(2),
	}))

	logger.Info("schedule generated",
		zap.Int("shifts", len(shifts)),
		zap.Float64("coverage", schedule.Metrics.CoveragePercentage),
		zap.Float64("service_level", schedule.Metrics.AchievedServiceLevel))
	return schedule, nil
}

// qualifiedAgents keeps agents with valid hour limits who may work at least
// one of the schedule's channels.
func (s *ScheduleService) qualifiedAgents(agents []domain.Agent, channelIDs []string, logger *zap.Logger) []domain.Agent {
	out := make([]domain.Agent, 0, len(agents))
	for _, a := range agents {
		if err := a.Validate(); err != nil {
			logger.Warn("agent skipped", zap.String("agent_id", a.ID), zap.Error(err))
			continue
		}
		if !a.EligibleForAny(channelIDs) {
			logger.Debug("agent not eligible for schedule channels", zap.String("agent_id", a.ID))
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *ScheduleService) buildShift(scheduleID string, a scheduling.Assignment, agent domain.Agent, channels []domain.Channel, dayForecasts []domain.ForecastRecord, c domain.ScheduleConstraints) domain.Shift {
	primary, secondary := s.strategies.Channels.SelectChannels(agent, channels)
	var primaryChannel *domain.Channel
	for i := range channels {
		if channels[i].ID == primary {
			primaryChannel = &channels[i]
			break
		}
	}
	return domain.Shift{
		ScheduleID:         scheduleID,
		AgentID:            a.AgentID,
		Date:               a.Date,
		StartTime:          a.Start,
		EndTime:            a.End,
		Type:               a.Type,
		PrimaryChannelID:   primary,
		SecondaryChannelID: secondary,
		RequiredSkills:     s.strategies.Skills.RequiredSkills(agent, primaryChannel),
		Breaks:             scheduling.PlaceBreaks(a.Start, a.End, c),
		ExpectedVolume:     s.strategies.Volume.ExpectedVolume(a, primary, dayForecasts),
	}
}

func (s *ScheduleService) loadChannels(ctx context.Context, ids []string) ([]domain.Channel, error) {
	channels := make([]domain.Channel, 0, len(ids))
	for _, id := range ids {
		ch, err := s.channels.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) || apperrors.IsNotFound(err) {
				return nil, apperrors.NewNotFound("channel", map[string]any{"channel_id": id})
			}
			return nil, err
		}
		channels = append(channels, *ch)
	}
	return channels, nil
}

// GetSchedule returns one schedule.
func (s *ScheduleService) GetSchedule(ctx context.Context, id string) (*domain.Schedule, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("schedule", map[string]any{"schedule_id": id})
		}
		return nil, err
	}
	return schedule, nil
}

// ListShifts returns a schedule's shifts, optionally for one date.
func (s *ScheduleService) ListShifts(ctx context.Context, scheduleID string, date *time.Time) ([]domain.Shift, error) {
	if _, err := s.GetSchedule(ctx, scheduleID); err != nil {
		return nil, err
	}
	return s.shifts.ListBySchedule(ctx, scheduleID, date)
}

func (s *ScheduleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event delivery failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func validateScheduleInput(input GenerateScheduleInput, c domain.ScheduleConstraints) error {
	switch {
	case input.StartDate.IsZero() || input.EndDate.IsZero():
		return apperrors.NewValidationError("start_date and end_date are required", nil)
	case domain.DateOnly(input.EndDate).Before(domain.DateOnly(input.StartDate)):
		return apperrors.NewValidationError("end_date must not be before start_date", map[string]any{
			"start_date": domain.DateKey(input.StartDate),
			"end_date":   domain.DateKey(input.EndDate),
		})
	case len(input.ChannelIDs) == 0:
		return apperrors.NewValidationError("at least one channel is required", nil)
	case c.MaxHoursPerDay <= 0 || c.MaxHoursPerWeek < c.MaxHoursPerDay:
		return apperrors.NewValidationError("max_hours_per_week must be at least max_hours_per_day", map[string]any{
			"max_hours_per_day":  c.MaxHoursPerDay,
			"max_hours_per_week": c.MaxHoursPerWeek,
		})
	case c.MinDaysOffPerWeek < 0 || c.MinDaysOffPerWeek > 7 || c.MaxConsecutiveDays < 0:
		return apperrors.NewValidationError("invalid day limits", map[string]any{
			"max_consecutive_days":  c.MaxConsecutiveDays,
			"min_days_off_per_week": c.MinDaysOffPerWeek,
		})
	case c.MinTimeBetweenShifts < 0 || c.MinBreakDuration < 0 || c.LunchBreakDuration < 0:
		return apperrors.NewValidationError("durations must not be negative", nil)
	}
	return nil
}

func groupForecasts(forecasts []domain.ForecastRecord) map[string][]domain.ForecastRecord {
	out := make(map[string][]domain.ForecastRecord)
	for _, f := range forecasts {
		key := domain.DateKey(f.Date)
		out[key] = append(out[key], f)
	}
	return out
}

// hourlyRequirements sums demand across channels and skills per hour.
func hourlyRequirements(forecasts []domain.ForecastRecord) map[int]scheduling.HourlyRequirement {
	reqs := make(map[int]scheduling.HourlyRequirement)
	for _, f := range forecasts {
		r := reqs[f.Hour]
		r.TotalAgents += f.RequiredAgents
		r.TotalVolume += f.PredictedVolume
		reqs[f.Hour] = r
	}
	for h, r := range reqs {
		if r.TotalAgents == 0 {
			delete(reqs, h)
		}
	}
	return reqs
}

func sortedHours(m map[int]int) []int {
	hours := make([]int, 0, len(m))
	for h := range m {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}
