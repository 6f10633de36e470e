package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/dto"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/service"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

// SchedulesHandler exposes schedule generation and reoptimization.
type SchedulesHandler struct {
	service *service.ScheduleService
}

// NewSchedulesHandler constructs handler.
func NewSchedulesHandler(scheduleService *service.ScheduleService) *SchedulesHandler {
	return &SchedulesHandler{service: scheduleService}
}

// Create POST /schedules.
func (h *SchedulesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.StartDate == "" || req.EndDate == "" {
		return apperrors.NewValidationError("name, start_date, end_date required", nil)
	}
	start, err := dto.ParseDate(req.StartDate)
	if err != nil {
		return apperrors.NewValidationError("start_date must be YYYY-MM-DD", nil)
	}
	end, err := dto.ParseDate(req.EndDate)
	if err != nil {
		return apperrors.NewValidationError("end_date must be YYYY-MM-DD", nil)
	}

	schedule, err := h.service.Generate(c.UserContext(), service.GenerateScheduleInput{
		Name:        req.Name,
		StartDate:   start,
		EndDate:     end,
		ChannelIDs:  req.ChannelIDs,
		AgentIDs:    req.AgentIDs,
		Constraints: req.Constraints,
		Preferences: req.Preferences,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": scheduleResponse(schedule)})
}

// Get GET /schedules/:id.
func (h *SchedulesHandler) Get(c *fiber.Ctx) error {
	schedule, err := h.service.GetSchedule(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": scheduleResponse(schedule)})
}

// Shifts GET /schedules/:id/shifts.
func (h *SchedulesHandler) Shifts(c *fiber.Ctx) error {
	var date *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := dto.ParseDate(raw)
		if err != nil {
			return apperrors.NewValidationError("date must be YYYY-MM-DD", map[string]any{"date": raw})
		}
		date = &parsed
	}
	shifts, err := h.service.ListShifts(c.UserContext(), c.Params("id"), date)
	if err != nil {
		return err
	}
	items := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		items = append(items, shiftResponse(&shifts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Reoptimize POST /schedules/:id/reoptimize.
func (h *SchedulesHandler) Reoptimize(c *fiber.Ctx) error {
	var req dto.ReoptimizeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	date, err := dto.ParseDate(req.Date)
	if err != nil {
		return apperrors.NewValidationError("date must be YYYY-MM-DD", map[string]any{"date": req.Date})
	}
	result, err := h.service.ReoptimizeIntraday(c.UserContext(), c.Params("id"), date)
	if err != nil {
		return err
	}
	opportunities := make([]dto.OpportunityResponse, 0, len(result.Opportunities))
	for _, opp := range result.Opportunities {
		opportunities = append(opportunities, dto.OpportunityResponse{
			Hour:      opp.Hour,
			Required:  opp.Required,
			Scheduled: opp.Scheduled,
			Deviation: opp.Deviation,
		})
	}
	return c.JSON(fiber.Map{"data": dto.ReoptimizeResponse{
		ScheduleID:    result.ScheduleID,
		Date:          domain.DateKey(result.Date),
		Opportunities: opportunities,
		Applied:       result.Applied,
		Unchanged:     result.Unchanged,
		Failed:        result.Failed,
	}})
}

func scheduleResponse(s *domain.Schedule) dto.ScheduleResponse {
	return dto.ScheduleResponse{
		ID:          s.ID,
		Name:        s.Name,
		StartDate:   domain.DateKey(s.StartDate),
		EndDate:     domain.DateKey(s.EndDate),
		ChannelIDs:  s.ChannelIDs,
		Status:      string(s.Status),
		Constraints: s.Constraints,
		Preferences: s.Preferences,
		Metrics: dto.ScheduleMetricsResponse{
			AchievedServiceLevel: s.Metrics.AchievedServiceLevel,
			CoveragePercentage:   s.Metrics.CoveragePercentage,
			TotalLaborCost:       s.Metrics.TotalLaborCost.StringFixed(2),
			TotalShifts:          s.Metrics.TotalShifts,
			TotalScheduledHours:  s.Metrics.TotalScheduledHours,
		},
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func shiftResponse(s *domain.Shift) dto.ShiftResponse {
	breaks := make([]dto.BreakResponse, 0, len(s.Breaks))
	for _, b := range s.Breaks {
		breaks = append(breaks, dto.BreakResponse{Kind: string(b.Kind), Start: b.Start, End: b.End})
	}
	return dto.ShiftResponse{
		ID:                 s.ID,
		AgentID:            s.AgentID,
		Date:               domain.DateKey(s.Date),
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		Type:               string(s.Type),
		PrimaryChannelID:   s.PrimaryChannelID,
		SecondaryChannelID: s.SecondaryChannelID,
		RequiredSkills:     s.RequiredSkills,
		Breaks:             breaks,
		ExpectedVolume:     s.ExpectedVolume,
	}
}
