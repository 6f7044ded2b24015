package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"conferencehub/internal/domain"
)

type paymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(db *sql.DB) domain.PaymentRepository {
	return &paymentRepository{
		DB: db,
	}
}

// CreateAndMarkPaid runs the payment insert and the ticket status flip in one
// transaction. Without it a failed flip would leave a committed payment on a
// RESERVED ticket, and the unique ticket_id index would block a retry.
func (r *paymentRepository) CreateAndMarkPaid(ctx context.Context, p *domain.Payment) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payment tx: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO payments (ticket_id, value, card_issuer, card_last_digits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, insert, p.TicketID, p.Value, p.CardIssuer, p.CardLastDigits).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ticket already paid", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert payment: %w", err)
	}

	flip := `
		UPDATE tickets
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := tx.ExecContext(ctx, flip, p.TicketID, domain.TicketStatusPaid)
	if err != nil {
		return fmt.Errorf("mark ticket paid: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark ticket paid: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payment tx: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Payment, error) {
	query := `
		SELECT id, ticket_id, value, card_issuer, card_last_digits, created_at, updated_at
		FROM payments
		WHERE ticket_id = $1
	`
	p := &domain.Payment{}
	err := r.DB.QueryRowContext(ctx, query, ticketID).Scan(
		&p.ID, &p.TicketID, &p.Value, &p.CardIssuer, &p.CardLastDigits, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
