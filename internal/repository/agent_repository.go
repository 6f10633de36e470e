package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// AgentRepository reads agent snapshots.
type AgentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	// ListActive returns active agents, restricted to ids when non-empty.
	ListActive(ctx context.Context, ids []string) ([]domain.Agent, error)
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

const agentColumns = `id, name, status, skills, channel_ids, performance, flexibility,
       max_hours_per_day, max_hours_per_week, hourly_rate::text, created_at, updated_at`

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE id=$1`
	return scanAgent(r.pool.QueryRow(ctx, query, id))
}

func (r *agentRepository) ListActive(ctx context.Context, ids []string) ([]domain.Agent, error) {
	clauses := []string{"status='active'"}
	args := []any{}
	if len(ids) > 0 {
		placeholders := make([]string, len(ids))
		for i, id := range ids {
			args = append(args, id)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`SELECT %s FROM agents WHERE %s ORDER BY id`, agentColumns, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func scanAgent(row pgx.Row) (*domain.Agent, error) {
	var (
		a    domain.Agent
		rate string
	)
	if err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Status,
		&a.Skills,
		&a.ChannelIDs,
		&a.Performance,
		&a.Flexibility,
		&a.MaxHoursPerDay,
		&a.MaxHoursPerWeek,
		&rate,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("agent %s hourly rate: %w", a.ID, err)
	}
	a.HourlyRate = parsed
	return &a, nil
}
