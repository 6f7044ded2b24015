package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"conferencehub/internal/domain"
)

var documentRegexp = regexp.MustCompile(`^\d{11}$`)

type enrollmentService struct {
	enrollmentRepo domain.EnrollmentRepository
}

// NewEnrollmentService creates an EnrollmentService with the given repository.
func NewEnrollmentService(enrollmentRepo domain.EnrollmentRepository) domain.EnrollmentService {
	return &enrollmentService{
		enrollmentRepo: enrollmentRepo,
	}
}

func (s *enrollmentService) Upsert(ctx context.Context, e *domain.Enrollment) error {
	e.Name = strings.TrimSpace(e.Name)
	e.Document = strings.TrimSpace(e.Document)
	e.Phone = strings.TrimSpace(e.Phone)

	if e.UserID == "" {
		return fmt.Errorf("%w: user is required", domain.ErrInvalidInput)
	}
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if !documentRegexp.MatchString(e.Document) {
		return fmt.Errorf("%w: document must be 11 digits", domain.ErrInvalidInput)
	}
	if e.Birthday.IsZero() || !e.Birthday.Before(time.Now()) {
		return fmt.Errorf("%w: birthday must be in the past", domain.ErrInvalidInput)
	}
	if e.Phone == "" {
		return fmt.Errorf("%w: phone is required", domain.ErrInvalidInput)
	}

	if err := s.enrollmentRepo.Upsert(ctx, e); err != nil {
		return fmt.Errorf("upsert enrollment: %w", err)
	}
	return nil
}

func (s *enrollmentService) GetByUserID(ctx context.Context, userID string) (*domain.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return enrollment, nil
}
