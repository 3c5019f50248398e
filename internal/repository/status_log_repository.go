package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-api/internal/domain"
)

// StatusLogRepository reads the append-only audit trail. Writes happen only
// inside TicketRepository.TransitionStatus, in the same transaction as the
// status change itself.
type StatusLogRepository interface {
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketStatusLog, error)
}

type statusLogRepository struct {
	pool *pgxpool.Pool
}

// NewStatusLogRepository builds repository.
func NewStatusLogRepository(pool *pgxpool.Pool) StatusLogRepository {
	return &statusLogRepository{pool: pool}
}

func (r *statusLogRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketStatusLog, error) {
	const query = `
        SELECT id, ticket_id, old_status, new_status, changed_by_id, changed_at
        FROM ticket_status_logs WHERE ticket_id=$1 ORDER BY changed_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketStatusLog
	for rows.Next() {
		var entry domain.TicketStatusLog
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.ChangedByID,
			&entry.ChangedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
