package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// TimeOffRepository reads agent absences.
type TimeOffRepository interface {
	// ListApproved returns approved records overlapping [from, to] for the agents.
	ListApproved(ctx context.Context, agentIDs []string, from, to time.Time) ([]domain.TimeOff, error)
}

type timeOffRepository struct {
	pool *pgxpool.Pool
}

// NewTimeOffRepository instantiates repository.
func NewTimeOffRepository(pool *pgxpool.Pool) TimeOffRepository {
	return &timeOffRepository{pool: pool}
}

func (r *timeOffRepository) ListApproved(ctx context.Context, agentIDs []string, from, to time.Time) ([]domain.TimeOff, error) {
	if len(agentIDs) == 0 {
		return nil, nil
	}

	args := []any{domain.TimeOffApproved, from, to}
	placeholders := make([]string, len(agentIDs))
	for i, id := range agentIDs {
		args = append(args, id)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	query := fmt.Sprintf(`
        SELECT id, agent_id, start_date, end_date, status, reason
        FROM agent_time_off
        WHERE status=$1 AND start_date <= $3 AND end_date >= $2 AND agent_id IN (%s)
        ORDER BY agent_id, start_date`, strings.Join(placeholders, ","))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TimeOff
	for rows.Next() {
		var off domain.TimeOff
		if err := rows.Scan(&off.ID, &off.AgentID, &off.StartDate, &off.EndDate, &off.Status, &off.Reason); err != nil {
			return nil, err
		}
		result = append(result, off)
	}
	return result, rows.Err()
}
