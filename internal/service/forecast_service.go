package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/forecasting"
	"github.com/spec-kit/workforce-service/internal/observability"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

// Forecast hour outcomes, also used as metric labels.
const (
	OutcomeGenerated = "generated"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
	OutcomeFallback  = "history_fallback"
)

// ForecastService generates and refreshes hourly channel forecasts.
type ForecastService struct {
	channels   repository.ChannelRepository
	history    repository.HistoryRepository
	forecasts  repository.ForecastRepository
	model      *forecasting.SeasonalModel
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.ForecastConfig
	now        func() time.Time
}

// ForecastDependencies bundles collaborators for the forecast service.
type ForecastDependencies struct {
	ChannelRepo  repository.ChannelRepository
	HistoryRepo  repository.HistoryRepository
	ForecastRepo repository.ForecastRepository
	Model        *forecasting.SeasonalModel
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	Config       config.ForecastConfig
	Now          func() time.Time
}

// ForecastBatchResult reports one GenerateHourly run. Hours outside the
// operating window and slots that are no longer editable count as skipped.
type ForecastBatchResult struct {
	ChannelID        string
	Date             time.Time
	Skill            *string
	Records          []domain.ForecastRecord
	Generated        int
	Skipped          int
	Failed           int
	HistoryFallbacks int
}

// RefreshSummary reports one RefreshAll run.
type RefreshSummary struct {
	Channels    int
	Succeeded   int
	Failed      int
	Hours       int
	CompletedAt time.Time
}

// NewForecastService constructs the service.
func NewForecastService(deps ForecastDependencies) *ForecastService {
	svc := &ForecastService{
		channels:   deps.ChannelRepo,
		history:    deps.HistoryRepo,
		forecasts:  deps.ForecastRepo,
		model:      deps.Model,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		cfg:        deps.Config,
		now:        deps.Now,
	}
	if svc.model == nil {
		svc.model = forecasting.NewSeasonalModel()
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	svc.logger = svc.logger.With(zap.String("component", "forecast_service"))
	if svc.now == nil {
		svc.now = func() time.Time { return time.Now().UTC() }
	}
	if svc.cfg.Workers <= 0 {
		svc.cfg.Workers = 1
	}
	return svc
}

// GenerateHourly forecasts every open hour of date for the channel. A
// missing channel fails the call; per-hour failures are logged and counted.
// On cancellation the hours already written stay and the partial result is
// returned with the context error.
func (s *ForecastService) GenerateHourly(ctx context.Context, channelID string, date time.Time, skill *string) (*ForecastBatchResult, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("channel", map[string]any{"channel_id": channelID})
		}
		return nil, err
	}
	if err := ch.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"channel_id": channelID})
	}

	date = domain.DateOnly(date)
	result := &ForecastBatchResult{ChannelID: ch.ID, Date: date, Skill: skill}
	logger := s.logger.With(zap.String("channel_id", ch.ID), zap.String("date", domain.DateKey(date)))

	for hour := 0; hour < 24; hour++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("forecast generation interrupted", zap.Int("hour", hour), zap.Error(err))
			return result, err
		}
		if !ch.OpenDuring(hour) {
			result.Skipped++
			continue
		}

		record, outcome, err := s.forecastHour(ctx, *ch, date, hour, skill, result)
		s.metrics.ObserveForecastHour(outcome)
		switch outcome {
		case OutcomeGenerated:
			result.Generated++
			result.Records = append(result.Records, *record)
		case OutcomeSkipped:
			result.Skipped++
			logger.Debug("forecast slot not editable", zap.Int("hour", hour), zap.Error(err))
		default:
			result.Failed++
			logger.Warn("forecast hour failed", zap.Int("hour", hour), zap.Error(err))
		}
	}

	logger.Info("forecast batch complete",
		zap.Int("generated", result.Generated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int("history_fallbacks", result.HistoryFallbacks))
	return result, nil
}

func (s *ForecastService) forecastHour(ctx context.Context, ch domain.Channel, date time.Time, hour int, skill *string, result *ForecastBatchResult) (*domain.ForecastRecord, string, error) {
	samples, err := s.loadHistory(ctx, ch.ID, date, hour, skill)
	if err != nil {
		result.HistoryFallbacks++
		s.metrics.ObserveForecastHour(OutcomeFallback)
		s.logger.Warn("history unavailable; using fallback",
			zap.String("channel_id", ch.ID), zap.Int("hour", hour), zap.Error(err))
		samples = nil
	}

	factors := s.model.Factors(date, hour)
	external := s.model.ExternalFactors(date, hour)
	prediction := forecasting.Predict(samples, factors, external)

	staffing, err := forecasting.Size(prediction.Volume, ch, skill)
	if err != nil {
		return nil, OutcomeFailed, err
	}

	record := &domain.ForecastRecord{
		ChannelID:             ch.ID,
		Skill:                 skill,
		Date:                  date,
		Hour:                  hour,
		PredictedVolume:       prediction.Volume,
		ConfidenceLevel:       prediction.Confidence,
		MinVolume:             prediction.MinVolume,
		MaxVolume:             prediction.MaxVolume,
		RequiredAgents:        staffing.RequiredAgents,
		OptimalAgents:         staffing.OptimalAgents,
		MinimumAgents:         staffing.MinimumAgents,
		PredictedServiceLevel: staffing.PredictedServiceLevel,
		PredictedWaitTime:     staffing.PredictedWaitTime,
		SeasonalFactor:        factors.Seasonal,
		TrendFactor:           factors.Trend,
		HolidayFactor:         external.Holiday,
		WeatherFactor:         external.Weather,
		SpecialEventFactor:    external.SpecialEvent,
		Status:                domain.ForecastStatusGenerated,
	}
	if err := s.forecasts.Upsert(ctx, record); err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			return nil, OutcomeSkipped, err
		}
		return nil, OutcomeFailed, err
	}
	return record, OutcomeGenerated, nil
}

// loadHistory reads the lookback window under the configured timeout.
func (s *ForecastService) loadHistory(ctx context.Context, channelID string, date time.Time, hour int, skill *string) ([]domain.VolumeSample, error) {
	if timeout := s.cfg.HistoryTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	samples, err := s.history.ListVolumes(ctx, repository.HistoryQuery{
		ChannelID:    channelID,
		Hour:         hour,
		Skill:        skill,
		Before:       date,
		LookbackDays: s.cfg.LookbackDays,
	})
	if err != nil {
		return nil, apperrors.NewDataUnavailable("volume history", err)
	}
	return samples, nil
}

// RefreshAll regenerates today's and tomorrow's forecasts for every active
// channel. Channel/date tuples run in parallel and fail independently.
func (s *ForecastService) RefreshAll(ctx context.Context) (*RefreshSummary, error) {
	channels, err := s.channels.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	today := domain.DateOnly(s.now())
	dates := []time.Time{today, today.AddDate(0, 0, 1)}
	summary := &RefreshSummary{Channels: len(channels)}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.cfg.Workers)
	for _, ch := range channels {
		ch := ch
		for _, date := range dates {
			date := date
			g.Go(func() error {
				res, err := s.GenerateHourly(ctx, ch.ID, date, nil)

				mu.Lock()
				defer mu.Unlock()
				if res != nil {
					summary.Hours += res.Generated
				}
				if err != nil {
					summary.Failed++
					s.logger.Error("forecast refresh failed",
						zap.String("channel_id", ch.ID),
						zap.String("date", domain.DateKey(date)),
						zap.Error(err))
					return nil
				}
				summary.Succeeded++
				return nil
			})
		}
	}
	_ = g.Wait()
	summary.CompletedAt = s.now()

	s.publish(ctx, events.NewEvent(events.EventForecastUpdated, "", summary.CompletedAt, events.ForecastUpdatedPayload{
		Channels:  summary.Channels,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Hours:     summary.Hours,
	}))

	s.logger.Info("forecast refresh complete",
		zap.Int("channels", summary.Channels),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))
	return summary, ctx.Err()
}

// ListForecasts returns stored forecasts matching filter.
func (s *ForecastService) ListForecasts(ctx context.Context, filter repository.ForecastFilter) ([]domain.ForecastRecord, error) {
	return s.forecasts.List(ctx, filter)
}

func (s *ForecastService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event delivery failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
