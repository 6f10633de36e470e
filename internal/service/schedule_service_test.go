package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/forecasting"
	"github.com/spec-kit/workforce-service/internal/observability"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

func testAgent(id string) domain.Agent {
	return domain.Agent{
		ID:              id,
		Name:            id,
		Status:          domain.AgentStatusActive,
		Skills:          []string{"billing"},
		ChannelIDs:      []string{"voice"},
		Performance:     domain.AgentPerformance{SatisfactionScore: 4, ResolutionRate: 0.8},
		MaxHoursPerDay:  8,
		MaxHoursPerWeek: 40,
		HourlyRate:      decimal.NewFromInt(20),
	}
}

func demand(date time.Time, from, to, required int) []domain.ForecastRecord {
	var out []domain.ForecastRecord
	for h := from; h <= to; h++ {
		out = append(out, domain.ForecastRecord{
			ChannelID:             "voice",
			Date:                  date,
			Hour:                  h,
			PredictedVolume:       10,
			RequiredAgents:        required,
			PredictedServiceLevel: 0.8,
			Status:                domain.ForecastStatusGenerated,
		})
	}
	return out
}

type scheduleFixture struct {
	schedules  *fakeSchedules
	shifts     *fakeShifts
	agents     *fakeAgents
	timeOff    *fakeTimeOff
	forecasts  *fakeForecasts
	dispatcher events.Dispatcher
	svc        *ScheduleService
}

func newScheduleFixture(t *testing.T, opportunity OpportunityHandler) *scheduleFixture {
	t.Helper()
	voice := voiceChannel("voice")
	voice.RequiredSkills = []string{"billing"}
	f := &scheduleFixture{
		schedules:  newFakeSchedules(),
		shifts:     &fakeShifts{},
		agents:     &fakeAgents{agents: []domain.Agent{testAgent("a1"), testAgent("a2"), testAgent("a3")}},
		timeOff:    &fakeTimeOff{},
		forecasts:  newFakeForecasts(demand(monday, 8, 15, 1)...),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	f.svc = NewScheduleService(ScheduleDependencies{
		ScheduleRepo: f.schedules,
		ShiftRepo:    f.shifts,
		AgentRepo:    f.agents,
		ChannelRepo:  newFakeChannels(voice),
		TimeOffRepo:  f.timeOff,
		ForecastRepo: f.forecasts,
		Model:        forecasting.NewSeasonalModel(),
		Opportunity:  opportunity,
		Dispatcher:   f.dispatcher,
		Metrics:      observability.NewMetrics(),
		Now:          func() time.Time { return monday.Add(6 * time.Hour) },
	})
	return f
}

func mondayInput() GenerateScheduleInput {
	return GenerateScheduleInput{
		Name:       "week 10",
		StartDate:  monday,
		EndDate:    monday,
		ChannelIDs: []string{"voice"},
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	f := newScheduleFixture(t, nil)
	recorder := recordEvents(f.dispatcher, events.EventScheduleGenerated)

	schedule, err := f.svc.Generate(context.Background(), mondayInput())
	require.NoError(t, err)

	assert.Equal(t, domain.ScheduleStatusGenerated, schedule.Status)
	stored, err := f.schedules.GetByID(context.Background(), schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduleStatusGenerated, stored.Status)

	shifts, err := f.shifts.ListBySchedule(context.Background(), schedule.ID, nil)
	require.NoError(t, err)
	require.Len(t, shifts, 3)

	byAgent := map[string]domain.Shift{}
	for _, sh := range shifts {
		byAgent[sh.AgentID] = sh
	}
	assert.Equal(t, domain.MustClockTime("08:00").On(monday), byAgent["a1"].StartTime)
	assert.Equal(t, domain.MustClockTime("16:00").On(monday), byAgent["a1"].EndTime)
	assert.Equal(t, domain.ShiftTypePartTime, byAgent["a2"].Type)
	assert.Equal(t, domain.MustClockTime("09:00").On(monday), byAgent["a3"].StartTime)

	a1 := byAgent["a1"]
	assert.Equal(t, "voice", a1.PrimaryChannelID)
	assert.Nil(t, a1.SecondaryChannelID)
	assert.Equal(t, []string{"billing"}, a1.RequiredSkills)
	assert.Len(t, a1.Breaks, 3)
	assert.Equal(t, 80, a1.ExpectedVolume)

	m := schedule.Metrics
	assert.Equal(t, 3, m.TotalShifts)
	assert.InDelta(t, 100.0, m.CoveragePercentage, 1e-9)
	assert.InDelta(t, 0.8, m.AchievedServiceLevel, 1e-9)
	assert.InDelta(t, 20.0, m.TotalScheduledHours, 1e-9)
	assert.True(t, decimal.NewFromInt(360).Equal(m.TotalLaborCost), m.TotalLaborCost.String())

	got := recorder.all()
	require.Len(t, got, 1)
	assert.Equal(t, schedule.ID, got[0].SubjectID)
	payload := got[0].Payload.(events.ScheduleGeneratedPayload)
	assert.Equal(t, "360.00", payload.TotalLaborCost)
}

func TestGenerateExcludesAgentsOnTimeOff(t *testing.T) {
	f := newScheduleFixture(t, nil)
	f.timeOff.records = []domain.TimeOff{
		{AgentID: "a1", StartDate: monday, EndDate: monday, Status: domain.TimeOffApproved},
		{AgentID: "a2", StartDate: monday, EndDate: monday, Status: domain.TimeOffPending},
	}

	schedule, err := f.svc.Generate(context.Background(), mondayInput())
	require.NoError(t, err)

	shifts, _ := f.shifts.ListBySchedule(context.Background(), schedule.ID, nil)
	require.Len(t, shifts, 2)
	for _, sh := range shifts {
		assert.NotEqual(t, "a1", sh.AgentID)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	var runs [][]string
	for i := 0; i < 5; i++ {
		f := newScheduleFixture(t, nil)
		schedule, err := f.svc.Generate(context.Background(), mondayInput())
		require.NoError(t, err)
		shifts, _ := f.shifts.ListBySchedule(context.Background(), schedule.ID, nil)
		var keys []string
		for _, sh := range shifts {
			keys = append(keys, sh.AgentID+"@"+sh.StartTime.Format(time.Kitchen))
		}
		runs = append(runs, keys)
	}
	for _, r := range runs[1:] {
		assert.Equal(t, runs[0], r)
	}
}

func TestGenerateRejectsInvalidRange(t *testing.T) {
	f := newScheduleFixture(t, nil)
	input := mondayInput()
	input.EndDate = monday.AddDate(0, 0, -1)

	_, err := f.svc.Generate(context.Background(), input)
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, f.schedules.schedules)
}

func TestGenerateRejectsInconsistentConstraints(t *testing.T) {
	f := newScheduleFixture(t, nil)
	input := mondayInput()
	c := domain.DefaultConstraints()
	c.MaxHoursPerWeek = 6
	input.Constraints = &c

	_, err := f.svc.Generate(context.Background(), input)
	assert.True(t, apperrors.IsValidation(err))
}

func TestGeneratePropagatesAgentLoadFailure(t *testing.T) {
	f := newScheduleFixture(t, nil)
	f.agents.err = errBoom

	schedule, err := f.svc.Generate(context.Background(), mondayInput())
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, schedule)
	assert.Empty(t, f.shifts.shifts)

	require.Len(t, f.schedules.schedules, 1)
	for _, s := range f.schedules.schedules {
		assert.Equal(t, domain.ScheduleStatusDraft, s.Status)
	}
}

func TestGeneratePropagatesForecastLoadFailure(t *testing.T) {
	f := newScheduleFixture(t, nil)
	f.forecasts.listErr = errBoom

	_, err := f.svc.Generate(context.Background(), mondayInput())
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, f.shifts.shifts)
}

func TestGenerateUnknownChannel(t *testing.T) {
	f := newScheduleFixture(t, nil)
	input := mondayInput()
	input.ChannelIDs = []string{"fax"}

	_, err := f.svc.Generate(context.Background(), input)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGenerateWithoutDemand(t *testing.T) {
	f := newScheduleFixture(t, nil)
	input := mondayInput()
	input.StartDate = monday.AddDate(0, 0, 1)
	input.EndDate = monday.AddDate(0, 0, 2)

	schedule, err := f.svc.Generate(context.Background(), input)
	require.NoError(t, err)
	assert.Zero(t, schedule.Metrics.TotalShifts)
	assert.Equal(t, 100.0, schedule.Metrics.CoveragePercentage)
}

func TestGetScheduleNotFound(t *testing.T) {
	f := newScheduleFixture(t, nil)
	_, err := f.svc.GetSchedule(context.Background(), "nope")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.svc.ListShifts(context.Background(), "nope", nil)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGenerateSkipsAgentsIneligibleForScheduleChannels(t *testing.T) {
	f := newScheduleFixture(t, nil)
	chatOnly := testAgent("chat-only")
	chatOnly.ChannelIDs = []string{"chat"}
	chatOnly.Performance = domain.AgentPerformance{SatisfactionScore: 5, ResolutionRate: 1}
	f.agents.agents = []domain.Agent{chatOnly}

	schedule, err := f.svc.Generate(context.Background(), mondayInput())
	require.NoError(t, err)

	shifts, err := f.shifts.ListBySchedule(context.Background(), schedule.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, shifts)

	f = newScheduleFixture(t, nil)
	f.agents.agents = []domain.Agent{chatOnly, testAgent("a1")}

	schedule, err = f.svc.Generate(context.Background(), mondayInput())
	require.NoError(t, err)
	shifts, err = f.shifts.ListBySchedule(context.Background(), schedule.ID, nil)
	require.NoError(t, err)
	require.NotEmpty(t, shifts)
	for _, sh := range shifts {
		assert.Equal(t, "a1", sh.AgentID)
		assert.Equal(t, "voice", sh.PrimaryChannelID)
	}
}

func TestGenerateSkipsAgentsWithInvalidHourLimits(t *testing.T) {
	f := newScheduleFixture(t, nil)
	broken := testAgent("broken")
	broken.MaxHoursPerDay = 10
	broken.MaxHoursPerWeek = 8
	broken.Performance = domain.AgentPerformance{SatisfactionScore: 5, ResolutionRate: 1}
	f.agents.agents = []domain.Agent{broken, testAgent("a1")}

	schedule, err := f.svc.Generate(context.Background(), mondayInput())
	require.NoError(t, err)

	shifts, _ := f.shifts.ListBySchedule(context.Background(), schedule.ID, nil)
	require.NotEmpty(t, shifts)
	for _, sh := range shifts {
		assert.NotEqual(t, "broken", sh.AgentID)
	}
}

func TestGenerateLogsShiftPersistenceFailure(t *testing.T) {
	f := newScheduleFixture(t, nil)
	core, logs := observer.New(zap.ErrorLevel)
	f.svc.logger = zap.New(core)
	f.shifts.createErr = errBoom

	_, err := f.svc.Generate(context.Background(), mondayInput())
	assert.ErrorIs(t, err, errBoom)

	for _, s := range f.schedules.schedules {
		assert.Equal(t, domain.ScheduleStatusDraft, s.Status)
	}
	entries := logs.FilterMessage("shift persistence failed, schedule left in draft").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(0), fields["persisted"])
	assert.Equal(t, int64(3), fields["pending"])
}
