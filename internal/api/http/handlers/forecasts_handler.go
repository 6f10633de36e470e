package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/dto"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/service"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

const maxForecastListLimit = 500

// ForecastsHandler exposes forecast generation and lookup.
type ForecastsHandler struct {
	service *service.ForecastService
}

// NewForecastsHandler constructs handler.
func NewForecastsHandler(forecastService *service.ForecastService) *ForecastsHandler {
	return &ForecastsHandler{service: forecastService}
}

// Generate POST /forecasts/generate.
func (h *ForecastsHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateForecastRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ChannelID == "" || req.Date == "" {
		return apperrors.NewValidationError("channel_id and date required", nil)
	}
	date, err := dto.ParseDate(req.Date)
	if err != nil {
		return apperrors.NewValidationError("date must be YYYY-MM-DD", map[string]any{"date": req.Date})
	}
	if req.Skill != nil && strings.TrimSpace(*req.Skill) == "" {
		req.Skill = nil
	}

	result, err := h.service.GenerateHourly(c.UserContext(), req.ChannelID, date, req.Skill)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": forecastBatchResponse(result)})
}

// Refresh POST /forecasts/refresh.
func (h *ForecastsHandler) Refresh(c *fiber.Ctx) error {
	summary, err := h.service.RefreshAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": dto.RefreshResponse{
		Channels:    summary.Channels,
		Succeeded:   summary.Succeeded,
		Failed:      summary.Failed,
		Hours:       summary.Hours,
		CompletedAt: summary.CompletedAt,
	}})
}

// List GET /forecasts.
func (h *ForecastsHandler) List(c *fiber.Ctx) error {
	filter, err := parseForecastQuery(c)
	if err != nil {
		return err
	}
	records, err := h.service.ListForecasts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ForecastResponse, 0, len(records))
	for i := range records {
		items = append(items, forecastResponse(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseForecastQuery(c *fiber.Ctx) (repository.ForecastFilter, error) {
	filter := repository.ForecastFilter{Limit: maxForecastListLimit}
	if channels := c.Query("channel_id"); channels != "" {
		for _, part := range strings.Split(channels, ",") {
			if id := strings.TrimSpace(part); id != "" {
				filter.ChannelIDs = append(filter.ChannelIDs, id)
			}
		}
	}
	if raw := c.Query("date"); raw != "" {
		date, err := dto.ParseDate(raw)
		if err != nil {
			return filter, apperrors.NewValidationError("date must be YYYY-MM-DD", map[string]any{"date": raw})
		}
		filter.Date = &date
	}
	if skill := c.Query("skill"); skill != "" {
		filter.Skill = &skill
	}
	if statuses := c.Query("status"); statuses != "" {
		for _, part := range strings.Split(statuses, ",") {
			filter.Statuses = append(filter.Statuses, domain.ForecastStatus(strings.TrimSpace(part)))
		}
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err == nil && limit > 0 && limit < maxForecastListLimit {
			filter.Limit = limit
		}
	}
	return filter, nil
}

func forecastBatchResponse(result *service.ForecastBatchResult) dto.ForecastBatchResponse {
	items := make([]dto.ForecastResponse, 0, len(result.Records))
	for i := range result.Records {
		items = append(items, forecastResponse(&result.Records[i]))
	}
	return dto.ForecastBatchResponse{
		ChannelID:        result.ChannelID,
		Date:             domain.DateKey(result.Date),
		Generated:        result.Generated,
		Skipped:          result.Skipped,
		Failed:           result.Failed,
		HistoryFallbacks: result.HistoryFallbacks,
		Forecasts:        items,
	}
}

func forecastResponse(f *domain.ForecastRecord) dto.ForecastResponse {
	return dto.ForecastResponse{
		ID:                    f.ID,
		ChannelID:             f.ChannelID,
		Skill:                 f.Skill,
		Date:                  domain.DateKey(f.Date),
		Hour:                  f.Hour,
		PredictedVolume:       f.PredictedVolume,
		ConfidenceLevel:       f.ConfidenceLevel,
		MinVolume:             f.MinVolume,
		MaxVolume:             f.MaxVolume,
		RequiredAgents:        f.RequiredAgents,
		OptimalAgents:         f.OptimalAgents,
		MinimumAgents:         f.MinimumAgents,
		PredictedServiceLevel: f.PredictedServiceLevel,
		PredictedWaitTime:     f.PredictedWaitTime,
		SeasonalFactor:        f.SeasonalFactor,
		TrendFactor:           f.TrendFactor,
		Status:                string(f.Status),
		UpdatedAt:             f.UpdatedAt,
	}
}
