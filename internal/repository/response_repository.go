package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/futuremakers/feedback-service/internal/domain"
)

// ResponseRepository manages moderator replies attached to tickets.
type ResponseRepository interface {
	Record(ctx context.Context, response *domain.Response) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Response, error)
}

type responseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository builds repository.
func NewResponseRepository(pool *pgxpool.Pool) ResponseRepository {
	return &responseRepository{pool: pool}
}

// Record inserts the reply and denormalizes its text onto the parent
// ticket in a single transaction, so a stored response never exists
// without the matching ticket reply.
func (r *responseRepository) Record(ctx context.Context, response *domain.Response) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insert = `
		INSERT INTO responses (ticket_id, text, sent_by)
		VALUES ($1,$2,$3)
		RETURNING id, sent_at`
	if err := tx.QueryRow(ctx, insert,
		response.TicketID,
		response.Text,
		response.SentBy,
	).Scan(&response.ID, &response.SentAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE tickets SET reply=$1 WHERE id=$2`,
		response.Text, response.TicketID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *responseRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Response, error) {
	const query = `
		SELECT id, ticket_id, text, sent_by, sent_at
		FROM responses WHERE ticket_id=$1 ORDER BY sent_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Response
	for rows.Next() {
		var response domain.Response
		if err := rows.Scan(
			&response.ID,
			&response.TicketID,
			&response.Text,
			&response.SentBy,
			&response.SentAt,
		); err != nil {
			return nil, err
		}
		result = append(result, response)
	}
	return result, rows.Err()
}
