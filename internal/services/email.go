package services

import (
	"context"
	"fmt"

	"conferencehub/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendSubscriptionConfirmed sends the activity subscription confirmation
// using the "subscription_confirmed" template.
func (s *emailService) SendSubscriptionConfirmed(ctx context.Context, data *domain.SubscriptionConfirmedEmailData) error {
	if data == nil {
		return fmt.Errorf("subscription confirmation data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("subscription_confirmed", data)
	if err != nil {
		return fmt.Errorf("failed to render subscription_confirmed template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}
