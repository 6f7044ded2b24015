package domain

import (
	"context"
	"time"
)

// Enrollment ties a person to exactly one user account and is the required
// precursor to holding a ticket. Address fields are stored inline.
// swagger:model Enrollment
type Enrollment struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Document     string    `json:"document"`
	Birthday     time.Time `json:"birthday"`
	Phone        string    `json:"phone"`
	Street       string    `json:"street"`
	Number       string    `json:"number"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Neighborhood string    `json:"neighborhood"`
	PostalCode   string    `json:"postal_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EnrollmentRepository defines storage for enrollments. Each user has at
// most one enrollment.
type EnrollmentRepository interface {
	// Upsert creates the user's enrollment or updates it in place.
	Upsert(ctx context.Context, enrollment *Enrollment) error
	GetByUserID(ctx context.Context, userID string) (*Enrollment, error)
}

// EnrollmentService defines enrollment management for the current user.
type EnrollmentService interface {
	Upsert(ctx context.Context, enrollment *Enrollment) error
	GetByUserID(ctx context.Context, userID string) (*Enrollment, error)
}
