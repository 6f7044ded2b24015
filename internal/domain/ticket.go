package domain

import (
	"context"
	"time"
)

// TicketStatus is the payment state of a ticket.
type TicketStatus string

// Ticket statuses. Only PAID tickets grant activity-subscription
// eligibility.
const (
	TicketStatusReserved TicketStatus = "RESERVED"
	TicketStatusPaid     TicketStatus = "PAID"
)

// TicketType describes a purchasable ticket category. Price is in cents.
// Remote ticket types never grant activity-subscription eligibility.
// swagger:model TicketType
type TicketType struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         int       `json:"price"`
	IsRemote      bool      `json:"is_remote"`
	IncludesHotel bool      `json:"includes_hotel"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Ticket is proof of conference attendance, owned by an enrollment.
// swagger:model Ticket
type Ticket struct {
	ID           string       `json:"id"`
	TicketTypeID string       `json:"ticket_type_id"`
	EnrollmentID string       `json:"enrollment_id"`
	Status       TicketStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// TicketType is populated on reads that join the type.
	TicketType *TicketType `json:"ticket_type,omitempty"`
}

// Payment records a processed payment for a ticket. The amount is recorded
// from the ticket type's price, never computed here.
// swagger:model Payment
type Payment struct {
	ID             string    `json:"id"`
	TicketID       string    `json:"ticket_id"`
	Value          int       `json:"value"`
	CardIssuer     string    `json:"card_issuer"`
	CardLastDigits string    `json:"card_last_digits"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TicketRepository defines storage for ticket types and tickets.
type TicketRepository interface {
	ListTypes(ctx context.Context) ([]*TicketType, error)
	GetTypeByID(ctx context.Context, id string) (*TicketType, error)
	Create(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, id string) (*Ticket, error)
	// GetByEnrollmentID returns the enrollment's ticket with its type joined.
	GetByEnrollmentID(ctx context.Context, enrollmentID string) (*Ticket, error)

	// CreateTypeIfAbsent creates the ticket type by name when missing and
	// returns the stored row either way. Used by seeding.
	CreateTypeIfAbsent(ctx context.Context, t *TicketType) (*TicketType, error)
}

// PaymentRepository defines storage for ticket payments.
type PaymentRepository interface {
	// CreateAndMarkPaid inserts the payment and flips its ticket to PAID in
	// one transaction, so a recorded payment always has a PAID ticket.
	CreateAndMarkPaid(ctx context.Context, payment *Payment) error
	GetByTicketID(ctx context.Context, ticketID string) (*Payment, error)
}

// TicketService defines ticket reservation and payment recording.
type TicketService interface {
	ListTypes(ctx context.Context) ([]*TicketType, error)
	// Reserve creates a RESERVED ticket for the caller's enrollment.
	Reserve(ctx context.Context, userID, ticketTypeID string) (*Ticket, error)
	// GetByUser returns the caller's ticket, type joined.
	GetByUser(ctx context.Context, userID string) (*Ticket, error)
	// Pay records a payment for the caller's own ticket and flips it to
	// PAID. Paying someone else's ticket fails with ErrIneligible.
	Pay(ctx context.Context, userID, ticketID, cardIssuer, cardLastDigits string) (*Payment, error)
	GetPayment(ctx context.Context, userID, ticketID string) (*Payment, error)
}
