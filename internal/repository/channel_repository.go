package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// ChannelRepository reads contact channel definitions.
type ChannelRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Channel, error)
	ListActive(ctx context.Context) ([]domain.Channel, error)
}

type channelRepository struct {
	pool *pgxpool.Pool
}

// NewChannelRepository instantiates repository.
func NewChannelRepository(pool *pgxpool.Pool) ChannelRepository {
	return &channelRepository{pool: pool}
}

const channelColumns = `id, name, service_type, operating_hours_start, operating_hours_end,
       average_handle_time, wrap_up_time, service_level_target, service_level_threshold,
       shrinkage_factor, min_staffing_level, preferred_staffing_buffer, required_skills,
       skill_handle_times, active, created_at, updated_at`

func (r *channelRepository) GetByID(ctx context.Context, id string) (*domain.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE id=$1`
	ch, err := scanChannel(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *channelRepository) ListActive(ctx context.Context) ([]domain.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE active=TRUE ORDER BY name, id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ch)
	}
	return result, rows.Err()
}

func scanChannel(row pgx.Row) (*domain.Channel, error) {
	var (
		ch         domain.Channel
		start, end string
	)
	if err := row.Scan(
		&ch.ID,
		&ch.Name,
		&ch.ServiceType,
		&start,
		&end,
		&ch.AverageHandleTime,
		&ch.WrapUpTime,
		&ch.ServiceLevelTarget,
		&ch.ServiceLevelThreshold,
		&ch.ShrinkageFactor,
		&ch.MinStaffingLevel,
		&ch.PreferredStaffingBuffer,
		&ch.RequiredSkills,
		&ch.SkillHandleTimes,
		&ch.Active,
		&ch.CreatedAt,
		&ch.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if ch.OperatingHoursStart, err = domain.ParseClockTime(start); err != nil {
		return nil, fmt.Errorf("channel %s: %w", ch.ID, err)
	}
	if ch.OperatingHoursEnd, err = domain.ParseClockTime(end); err != nil {
		return nil, fmt.Errorf("channel %s: %w", ch.ID, err)
	}
	return &ch, nil
}
