package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// HistoryQuery selects observed volumes for one channel hour.
type HistoryQuery struct {
	ChannelID    string
	Hour         int
	Skill        *string
	Before       time.Time
	LookbackDays int
}

// HistoryRepository reads observed contact volumes.
type HistoryRepository interface {
	ListVolumes(ctx context.Context, q HistoryQuery) ([]domain.VolumeSample, error)
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository instantiates repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) ListVolumes(ctx context.Context, q HistoryQuery) ([]domain.VolumeSample, error) {
	const query = `
        SELECT volume_date, SUM(volume)::int
        FROM contact_volume_history
        WHERE channel_id=$1 AND hour=$2 AND skill IS NOT DISTINCT FROM $3
          AND volume_date < $4 AND volume_date >= $5
        GROUP BY volume_date
        ORDER BY volume_date`

	before := domain.DateOnly(q.Before)
	from := before.AddDate(0, 0, -q.LookbackDays)

	rows, err := r.pool.Query(ctx, query, q.ChannelID, q.Hour, q.Skill, before, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []domain.VolumeSample
	for rows.Next() {
		var s domain.VolumeSample
		if err := rows.Scan(&s.Date, &s.Volume); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
