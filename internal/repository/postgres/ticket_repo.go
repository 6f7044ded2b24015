package postgres

import (
	"context"
	"database/sql"
	"errors"

	"conferencehub/internal/domain"
)

type ticketRepository struct {
	DB *sql.DB
}

func NewTicketRepository(db *sql.DB) domain.TicketRepository {
	return &ticketRepository{
		DB: db,
	}
}

func (r *ticketRepository) ListTypes(ctx context.Context) ([]*domain.TicketType, error) {
	query := `
		SELECT id, name, price, is_remote, includes_hotel, created_at, updated_at
		FROM ticket_types
		ORDER BY price ASC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]*domain.TicketType, 0)
	for rows.Next() {
		t := &domain.TicketType{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Price, &t.IsRemote, &t.IncludesHotel, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *ticketRepository) GetTypeByID(ctx context.Context, id string) (*domain.TicketType, error) {
	query := `
		SELECT id, name, price, is_remote, includes_hotel, created_at, updated_at
		FROM ticket_types
		WHERE id = $1
	`
	t := &domain.TicketType{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.Name, &t.Price, &t.IsRemote, &t.IncludesHotel, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	query := `
		INSERT INTO tickets (ticket_type_id, enrollment_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRowContext(ctx, query, ticket.TicketTypeID, ticket.EnrollmentID, ticket.Status).
		Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `
		SELECT id, ticket_type_id, enrollment_id, status, created_at, updated_at
		FROM tickets
		WHERE id = $1
	`
	t := &domain.Ticket{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.TicketTypeID, &t.EnrollmentID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *ticketRepository) GetByEnrollmentID(ctx context.Context, enrollmentID string) (*domain.Ticket, error) {
	query := `
		SELECT t.id, t.ticket_type_id, t.enrollment_id, t.status, t.created_at, t.updated_at,
			tt.id, tt.name, tt.price, tt.is_remote, tt.includes_hotel, tt.created_at, tt.updated_at
		FROM tickets t
		JOIN ticket_types tt ON tt.id = t.ticket_type_id
		WHERE t.enrollment_id = $1
	`
	t := &domain.Ticket{TicketType: &domain.TicketType{}}
	err := r.DB.QueryRowContext(ctx, query, enrollmentID).Scan(
		&t.ID, &t.TicketTypeID, &t.EnrollmentID, &t.Status, &t.CreatedAt, &t.UpdatedAt,
		&t.TicketType.ID, &t.TicketType.Name, &t.TicketType.Price, &t.TicketType.IsRemote,
		&t.TicketType.IncludesHotel, &t.TicketType.CreatedAt, &t.TicketType.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *ticketRepository) CreateTypeIfAbsent(ctx context.Context, t *domain.TicketType) (*domain.TicketType, error) {
	query := `
		INSERT INTO ticket_types (name, price, is_remote, includes_hotel, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, price, is_remote, includes_hotel, created_at, updated_at
	`
	stored := &domain.TicketType{}
	err := r.DB.QueryRowContext(ctx, query, t.Name, t.Price, t.IsRemote, t.IncludesHotel).Scan(
		&stored.ID, &stored.Name, &stored.Price, &stored.IsRemote, &stored.IncludesHotel,
		&stored.CreatedAt, &stored.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return stored, nil
}
