package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// ScheduleRepository persists schedules.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.Schedule) error
	Update(ctx context.Context, schedule *domain.Schedule) error
	GetByID(ctx context.Context, id string) (*domain.Schedule, error)
	// ListActive returns published or active schedules whose period includes on.
	ListActive(ctx context.Context, on time.Time) ([]domain.Schedule, error)
}

type scheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository instantiates repository.
func NewScheduleRepository(pool *pgxpool.Pool) ScheduleRepository {
	return &scheduleRepository{pool: pool}
}

const scheduleColumns = `id, name, start_date, end_date, channel_ids, constraints, preferences,
       metrics, status, created_at, updated_at`

func (r *scheduleRepository) Create(ctx context.Context, s *domain.Schedule) error {
	const query = `
        INSERT INTO schedules (name, start_date, end_date, channel_ids, constraints, preferences, metrics, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		s.Name,
		domain.DateOnly(s.StartDate),
		domain.DateOnly(s.EndDate),
		nonNilStrings(s.ChannelIDs),
		s.Constraints,
		s.Preferences,
		s.Metrics,
		s.Status,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *scheduleRepository) Update(ctx context.Context, s *domain.Schedule) error {
	const query = `
        UPDATE schedules SET name=$1, constraints=$2, preferences=$3, metrics=$4, status=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		s.Name,
		s.Constraints,
		s.Preferences,
		s.Metrics,
		s.Status,
		s.ID,
	).Scan(&s.UpdatedAt)
}

func (r *scheduleRepository) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id=$1`
	return scanSchedule(r.pool.QueryRow(ctx, query, id))
}

func (r *scheduleRepository) ListActive(ctx context.Context, on time.Time) ([]domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules
        WHERE status IN ($1, $2) AND start_date <= $3 AND end_date >= $3
        ORDER BY start_date, id`
	rows, err := r.pool.Query(ctx, query, domain.ScheduleStatusPublished, domain.ScheduleStatusActive, domain.DateOnly(on))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func scanSchedule(row pgx.Row) (*domain.Schedule, error) {
	var s domain.Schedule
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.StartDate,
		&s.EndDate,
		&s.ChannelIDs,
		&s.Constraints,
		&s.Preferences,
		&s.Metrics,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
