package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"conferencehub/internal/domain"
)

var cardDigitsRegexp = regexp.MustCompile(`^\d{4}$`)

type ticketService struct {
	ticketRepo     domain.TicketRepository
	paymentRepo    domain.PaymentRepository
	enrollmentRepo domain.EnrollmentRepository
}

// NewTicketService creates a TicketService with the given repositories.
func NewTicketService(
	ticketRepo domain.TicketRepository,
	paymentRepo domain.PaymentRepository,
	enrollmentRepo domain.EnrollmentRepository,
) domain.TicketService {
	return &ticketService{
		ticketRepo:     ticketRepo,
		paymentRepo:    paymentRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (s *ticketService) ListTypes(ctx context.Context) ([]*domain.TicketType, error) {
	types, err := s.ticketRepo.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	return types, nil
}

func (s *ticketService) Reserve(ctx context.Context, userID, ticketTypeID string) (*domain.Ticket, error) {
	enrollment, err := s.enrollmentRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// A ticket cannot exist without an enrollment.
			return nil, domain.ErrIneligible
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}

	ticketType, err := s.ticketRepo.GetTypeByID(ctx, ticketTypeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket type: %w", err)
	}

	ticket := &domain.Ticket{
		TicketTypeID: ticketType.ID,
		EnrollmentID: enrollment.ID,
		Status:       domain.TicketStatusReserved,
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	ticket.TicketType = ticketType
	return ticket, nil
}

func (s *ticketService) GetByUser(ctx context.Context, userID string) (*domain.Ticket, error) {
	enrollment, err := s.enrollmentRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	ticket, err := s.ticketRepo.GetByEnrollmentID(ctx, enrollment.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

// ownTicket resolves the caller's enrollment and verifies the ticket
// belongs to it.
func (s *ticketService) ownTicket(ctx context.Context, userID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	enrollment, err := s.enrollmentRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrIneligible
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	if ticket.EnrollmentID != enrollment.ID {
		return nil, domain.ErrIneligible
	}
	return ticket, nil
}

func (s *ticketService) Pay(ctx context.Context, userID, ticketID, cardIssuer, cardLastDigits string) (*domain.Payment, error) {
	cardIssuer = strings.TrimSpace(cardIssuer)
	if cardIssuer == "" {
		return nil, fmt.Errorf("%w: card issuer is required", domain.ErrInvalidInput)
	}
	if !cardDigitsRegexp.MatchString(cardLastDigits) {
		return nil, fmt.Errorf("%w: card last digits must be 4 digits", domain.ErrInvalidInput)
	}

	ticket, err := s.ownTicket(ctx, userID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusPaid {
		return nil, fmt.Errorf("%w: ticket already paid", domain.ErrInvalidInput)
	}

	ticketType, err := s.ticketRepo.GetTypeByID(ctx, ticket.TicketTypeID)
	if err != nil {
		return nil, fmt.Errorf("get ticket type: %w", err)
	}

	// The amount is recorded from the catalog price, never computed.
	payment := &domain.Payment{
		TicketID:       ticket.ID,
		Value:          ticketType.Price,
		CardIssuer:     cardIssuer,
		CardLastDigits: cardLastDigits,
	}
	if err := s.paymentRepo.CreateAndMarkPaid(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	return payment, nil
}

func (s *ticketService) GetPayment(ctx context.Context, userID, ticketID string) (*domain.Payment, error) {
	ticket, err := s.ownTicket(ctx, userID, ticketID)
	if err != nil {
		return nil, err
	}
	payment, err := s.paymentRepo.GetByTicketID(ctx, ticket.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return payment, nil
}
