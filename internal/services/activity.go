package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conferencehub/internal/domain"
)

type activityService struct {
	activityRepo   domain.ActivityRepository
	enrollmentRepo domain.EnrollmentRepository
	ticketRepo     domain.TicketRepository
	userRepo       domain.UserRepository
	cache          domain.ScheduleCache
	emailService   domain.EmailService
	logger         *slog.Logger
}

// NewActivityService creates an ActivityService. cache and emailService may
// be nil; the service then skips caching and confirmation emails.
func NewActivityService(
	activityRepo domain.ActivityRepository,
	enrollmentRepo domain.EnrollmentRepository,
	ticketRepo domain.TicketRepository,
	userRepo domain.UserRepository,
	cache domain.ScheduleCache,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.ActivityService {
	return &activityService{
		activityRepo:   activityRepo,
		enrollmentRepo: enrollmentRepo,
		ticketRepo:     ticketRepo,
		userRepo:       userRepo,
		cache:          cache,
		emailService:   emailService,
		logger:         logger,
	}
}

// checkEligibility is the first gate: the user must hold an enrollment and
// a paid, non-remote ticket. Returns the ticket ID for the following steps.
func (s *activityService) checkEligibility(ctx context.Context, userID string) (string, error) {
	enrollment, err := s.enrollmentRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrIneligible
		}
		return "", fmt.Errorf("get enrollment: %w", err)
	}

	ticket, err := s.ticketRepo.GetByEnrollmentID(ctx, enrollment.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrIneligible
		}
		return "", fmt.Errorf("get ticket: %w", err)
	}
	if ticket.Status != domain.TicketStatusPaid {
		return "", domain.ErrIneligible
	}
	if ticket.TicketType == nil || ticket.TicketType.IsRemote {
		return "", domain.ErrIneligible
	}
	return ticket.ID, nil
}

// dayStart normalizes t to midnight UTC. All day-window arithmetic runs in
// UTC so the window never drifts across a DST boundary.
func dayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// overlaps reports whether [newStart, newEnd) collides with old under the
// half-open rule: a conflict when newStart falls in [old.StartsAt,
// old.EndsAt) or newEnd falls in (old.StartsAt, old.EndsAt). Back-to-back
// activities do not collide.
func overlaps(newStart, newEnd time.Time, old domain.TimeRange) bool {
	if !newStart.Before(old.StartsAt) && newStart.Before(old.EndsAt) {
		return true
	}
	if newEnd.After(old.StartsAt) && newEnd.Before(old.EndsAt) {
		return true
	}
	return false
}

// checkConflict is the second gate: the candidate activity must exist and
// must not overlap any activity the ticket is already subscribed to on the
// same calendar day. Returns the candidate activity.
func (s *activityService) checkConflict(ctx context.Context, activityID, ticketID string) (*domain.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}

	ranges, err := s.activityRepo.ListSubscribedRanges(ctx, dayStart(activity.Date), ticketID)
	if err != nil {
		return nil, fmt.Errorf("list subscribed ranges: %w", err)
	}
	for _, old := range ranges {
		if overlaps(activity.StartsAt, activity.EndsAt, old) {
			return nil, domain.ErrIneligible
		}
	}
	return activity, nil
}

func (s *activityService) Subscribe(ctx context.Context, userID, activityID string) (*domain.ActivitySubscription, error) {
	ticketID, err := s.checkEligibility(ctx, userID)
	if err != nil {
		return nil, err
	}
	activity, err := s.checkConflict(ctx, activityID, ticketID)
	if err != nil {
		return nil, err
	}

	sub, err := s.activityRepo.Subscribe(ctx, activity.ID, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) || errors.Is(err, domain.ErrAlreadySubscribed) {
			return nil, err
		}
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	s.invalidateCache(ctx)
	s.sendConfirmation(ctx, userID, activity)
	return sub, nil
}

func (s *activityService) Unsubscribe(ctx context.Context, userID, activityID string) (*domain.Activity, error) {
	ticketID, err := s.checkEligibility(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub, err := s.activityRepo.GetSubscription(ctx, activityID, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Unsubscribing from an activity never joined fails the same
			// way an ineligible subscribe does.
			return nil, domain.ErrIneligible
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	activity, err := s.activityRepo.Unsubscribe(ctx, sub.ID, activityID)
	if err != nil {
		return nil, fmt.Errorf("delete subscription: %w", err)
	}

	s.invalidateCache(ctx)
	return activity, nil
}

func (s *activityService) GetSubscription(ctx context.Context, userID, activityID string) (*domain.ActivitySubscription, error) {
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
	return s.activityRepo.GetSubscription(ctx, activityID, ticket.ID)
}

func (s *activityService) GetDays(ctx context.Context) ([]time.Time, error) {
	if s.cache != nil {
		if days, err := s.cache.GetDays(ctx); err == nil {
			return days, nil
		}
	}

	days, err := s.activityRepo.ListDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetDays(ctx, days); err != nil {
			s.logger.WarnContext(ctx, "schedule cache write failed", "err", err)
		}
	}
	return days, nil
}

func (s *activityService) GetDaySchedule(ctx context.Context, day time.Time) ([]*domain.LocationSchedule, error) {
	day = dayStart(day)

	if s.cache != nil {
		if schedule, err := s.cache.GetDaySchedule(ctx, day); err == nil {
			return schedule, nil
		}
	}

	schedule, err := s.activityRepo.ListByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list activities by day: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetDaySchedule(ctx, day, schedule); err != nil {
			s.logger.WarnContext(ctx, "schedule cache write failed", "err", err)
		}
	}
	return schedule, nil
}

func (s *activityService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "schedule cache invalidation failed", "err", err)
	}
}

// sendConfirmation sends the subscription confirmation email. Best effort:
// a failure is logged and never unwinds the committed subscription.
func (s *activityService) sendConfirmation(ctx context.Context, userID string, activity *domain.Activity) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "confirmation email skipped", "user_id", userID, "err", err)
		return
	}
	data := &domain.SubscriptionConfirmedEmailData{
		Email:        user.Email,
		ActivityName: activity.Name,
		StartsAt:     activity.StartsAt,
		EndsAt:       activity.EndsAt,
	}
	if err := s.emailService.SendSubscriptionConfirmed(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "confirmation email failed", "user_id", userID, "err", err)
	}
}
