package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// ShiftRepository persists shifts generated for schedules.
type ShiftRepository interface {
	Create(ctx context.Context, shift *domain.Shift) error
	Update(ctx context.Context, shift *domain.Shift) error
	// ListBySchedule returns a schedule's shifts, optionally for one date.
	ListBySchedule(ctx context.Context, scheduleID string, date *time.Time) ([]domain.Shift, error)
}

type shiftRepository struct {
	pool *pgxpool.Pool
}

// NewShiftRepository instantiates repository.
func NewShiftRepository(pool *pgxpool.Pool) ShiftRepository {
	return &shiftRepository{pool: pool}
}

func (r *shiftRepository) Create(ctx context.Context, s *domain.Shift) error {
	const query = `
        INSERT INTO shifts (schedule_id, agent_id, shift_date, start_time, end_time, shift_type,
            primary_channel_id, secondary_channel_id, required_skills, breaks, expected_volume)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		s.ScheduleID,
		s.AgentID,
		domain.DateOnly(s.Date),
		s.StartTime,
		s.EndTime,
		s.Type,
		s.PrimaryChannelID,
		s.SecondaryChannelID,
		nonNilStrings(s.RequiredSkills),
		nonNilBreaks(s.Breaks),
		s.ExpectedVolume,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *shiftRepository) Update(ctx context.Context, s *domain.Shift) error {
	const query = `
        UPDATE shifts SET start_time=$1, end_time=$2, shift_type=$3, primary_channel_id=$4,
            secondary_channel_id=$5, required_skills=$6, breaks=$7, expected_volume=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		s.StartTime,
		s.EndTime,
		s.Type,
		s.PrimaryChannelID,
		s.SecondaryChannelID,
		nonNilStrings(s.RequiredSkills),
		nonNilBreaks(s.Breaks),
		s.ExpectedVolume,
		s.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *shiftRepository) ListBySchedule(ctx context.Context, scheduleID string, date *time.Time) ([]domain.Shift, error) {
	query := `
        SELECT id, schedule_id, agent_id, shift_date, start_time, end_time, shift_type,
               primary_channel_id, secondary_channel_id, required_skills, breaks, expected_volume,
               created_at, updated_at
        FROM shifts WHERE schedule_id=$1`
	args := []any{scheduleID}
	if date != nil {
		args = append(args, domain.DateOnly(*date))
		query += fmt.Sprintf(" AND shift_date=$%d", len(args))
	}
	query += " ORDER BY shift_date, start_time, agent_id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Shift
	for rows.Next() {
		var s domain.Shift
		if err := rows.Scan(
			&s.ID,
			&s.ScheduleID,
			&s.AgentID,
			&s.Date,
			&s.StartTime,
			&s.EndTime,
			&s.Type,
			&s.PrimaryChannelID,
			&s.SecondaryChannelID,
			&s.RequiredSkills,
			&s.Breaks,
			&s.ExpectedVolume,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		s.StartTime = s.StartTime.UTC()
		s.EndTime = s.EndTime.UTC()
		result = append(result, s)
	}
	return result, rows.Err()
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilBreaks(v []domain.Break) []domain.Break {
	if v == nil {
		return []domain.Break{}
	}
	return v
}
