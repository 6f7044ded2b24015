package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// SubscriptionConfirmedEmailData holds data for the subscription
// confirmation email.
type SubscriptionConfirmedEmailData struct {
	Email        string
	ActivityName string
	StartsAt     time.Time
	EndsAt       time.Time
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendSubscriptionConfirmed(ctx context.Context, data *SubscriptionConfirmedEmailData) error
}
