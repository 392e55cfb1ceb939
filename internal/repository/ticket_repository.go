package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/futuremakers/feedback-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Code uniqueness is
// enforced here by a unique index; callers react to ErrCodeTaken.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ErrCodeTaken reports a ticket code unique-index collision.
var ErrCodeTaken = errors.New("ticket code already taken")

const uniqueViolation = "23505"

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
		INSERT INTO tickets (code, content, department, status, type, deadline, submitter_id, submitter_name, submitter_handle)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Code,
		ticket.Content,
		ticket.Department,
		ticket.Status,
		ticket.Type,
		ticket.Deadline,
		ticket.SubmitterID,
		ticket.SubmitterName,
		ticket.SubmitterHandle,
	).Scan(&ticket.ID, &ticket.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrCodeTaken
		}
		return err
	}
	return nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
		UPDATE tickets SET content=$1, department=$2, status=$3, type=$4, deadline=$5, reply=$6
		WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Content,
		ticket.Department,
		ticket.Status,
		ticket.Type,
		ticket.Deadline,
		ticket.Reply,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
		SELECT id, code, content, department, status, type, created_at, deadline,
			   submitter_id, submitter_name, submitter_handle, reply
		FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	const query = `
		SELECT id, code, content, department, status, type, created_at, deadline,
			   submitter_id, submitter_name, submitter_handle, reply
		FROM tickets WHERE code=$1`
	return r.fetchSingle(ctx, query, code)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.Code,
		&ticket.Content,
		&ticket.Department,
		&ticket.Status,
		&ticket.Type,
		&ticket.CreatedAt,
		&ticket.Deadline,
		&ticket.SubmitterID,
		&ticket.SubmitterName,
		&ticket.SubmitterHandle,
		&ticket.Reply,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
		SELECT id, code, content, department, status, type, created_at, deadline,
			   submitter_id, submitter_name, submitter_handle, reply
		FROM tickets ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Code,
			&ticket.Content,
			&ticket.Department,
			&ticket.Status,
			&ticket.Type,
			&ticket.CreatedAt,
			&ticket.Deadline,
			&ticket.SubmitterID,
			&ticket.SubmitterName,
			&ticket.SubmitterHandle,
			&ticket.Reply,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
