package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

// ForecastFilter narrows forecast listings.
type ForecastFilter struct {
	ChannelIDs []string
	Date       *time.Time
	From       *time.Time
	To         *time.Time
	Skill      *string
	Statuses   []domain.ForecastStatus
	Limit      int
}

// ForecastRepository persists hourly forecast records.
type ForecastRepository interface {
	// Upsert writes the record for its (channel, skill, date, hour) slot.
	// A slot already moved past generated is left untouched and reported as
	// a conflict.
	Upsert(ctx context.Context, record *domain.ForecastRecord) error
	List(ctx context.Context, filter ForecastFilter) ([]domain.ForecastRecord, error)
}

type forecastRepository struct {
	pool *pgxpool.Pool
}

// NewForecastRepository instantiates repository.
func NewForecastRepository(pool *pgxpool.Pool) ForecastRepository {
	return &forecastRepository{pool: pool}
}

const forecastColumns = `id, channel_id, skill, forecast_date, hour, predicted_volume, confidence_level,
       min_volume, max_volume, required_agents, optimal_agents, minimum_agents,
       predicted_service_level, predicted_wait_time, seasonal_factor, trend_factor,
       holiday_factor, weather_factor, special_event_factor, actual_volume, status,
       created_at, updated_at`

func (r *forecastRepository) Upsert(ctx context.Context, f *domain.ForecastRecord) error {
	const query = `
        INSERT INTO forecasts (channel_id, skill, forecast_date, hour, predicted_volume, confidence_level,
            min_volume, max_volume, required_agents, optimal_agents, minimum_agents,
            predicted_service_level, predicted_wait_time, seasonal_factor, trend_factor,
            holiday_factor, weather_factor, special_event_factor, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
        ON CONFLICT (channel_id, COALESCE(skill, ''), forecast_date, hour) DO UPDATE SET
            predicted_volume=EXCLUDED.predicted_volume,
            confidence_level=EXCLUDED.confidence_level,
            min_volume=EXCLUDED.min_volume,
            max_volume=EXCLUDED.max_volume,
            required_agents=EXCLUDED.required_agents,
            optimal_agents=EXCLUDED.optimal_agents,
            minimum_agents=EXCLUDED.minimum_agents,
            predicted_service_level=EXCLUDED.predicted_service_level,
            predicted_wait_time=EXCLUDED.predicted_wait_time,
            seasonal_factor=EXCLUDED.seasonal_factor,
            trend_factor=EXCLUDED.trend_factor,
            holiday_factor=EXCLUDED.holiday_factor,
            weather_factor=EXCLUDED.weather_factor,
            special_event_factor=EXCLUDED.special_event_factor,
            updated_at=NOW()
        WHERE forecasts.status='generated'
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		f.ChannelID,
		f.Skill,
		f.Date,
		f.Hour,
		f.PredictedVolume,
		f.ConfidenceLevel,
		f.MinVolume,
		f.MaxVolume,
		f.RequiredAgents,
		f.OptimalAgents,
		f.MinimumAgents,
		f.PredictedServiceLevel,
		f.PredictedWaitTime,
		f.SeasonalFactor,
		f.TrendFactor,
		f.HolidayFactor,
		f.WeatherFactor,
		f.SpecialEventFactor,
		f.Status,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return errorutil.NewConflict("forecast slot is no longer editable", map[string]any{
			"channel_id": f.ChannelID,
			"date":       domain.DateKey(f.Date),
			"hour":       f.Hour,
		})
	}
	return err
}

func (r *forecastRepository) List(ctx context.Context, filter ForecastFilter) ([]domain.ForecastRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.ChannelIDs) > 0 {
		placeholders := make([]string, len(filter.ChannelIDs))
		for i, id := range filter.ChannelIDs {
			args = append(args, id)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("channel_id IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Date != nil {
		args = append(args, domain.DateOnly(*filter.Date))
		clauses = append(clauses, fmt.Sprintf("forecast_date=$%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, domain.DateOnly(*filter.From))
		clauses = append(clauses, fmt.Sprintf("forecast_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, domain.DateOnly(*filter.To))
		clauses = append(clauses, fmt.Sprintf("forecast_date <= $%d", len(args)))
	}
	if filter.Skill != nil {
		args = append(args, *filter.Skill)
		clauses = append(clauses, fmt.Sprintf("skill=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`SELECT %s FROM forecasts WHERE %s ORDER BY forecast_date, hour, channel_id`,
		forecastColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ForecastRecord
	for rows.Next() {
		var f domain.ForecastRecord
		if err := rows.Scan(
			&f.ID,
			&f.ChannelID,
			&f.Skill,
			&f.Date,
			&f.Hour,
			&f.PredictedVolume,
			&f.ConfidenceLevel,
			&f.MinVolume,
			&f.MaxVolume,
			&f.RequiredAgents,
			&f.OptimalAgents,
			&f.MinimumAgents,
			&f.PredictedServiceLevel,
			&f.PredictedWaitTime,
			&f.SeasonalFactor,
			&f.TrendFactor,
			&f.HolidayFactor,
			&f.WeatherFactor,
			&f.SpecialEventFactor,
			&f.ActualVolume,
			&f.Status,
			&f.CreatedAt,
			&f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}
