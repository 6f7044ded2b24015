package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"conferencehub/internal/domain"
)

type activityRepository struct {
	DB *sql.DB
}

func NewActivityRepository(db *sql.DB) domain.ActivityRepository {
	return &activityRepository{
		DB: db,
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *activityRepository) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	query := `
		SELECT id, location_id, name, date, starts_at, ends_at, capacity, vacancy, created_at, updated_at
		FROM activities
		WHERE id = $1
	`
	a := &domain.Activity{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.LocationID, &a.Name, &a.Date, &a.StartsAt, &a.EndsAt,
		&a.Capacity, &a.Vacancy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *activityRepository) ListDays(ctx context.Context) ([]time.Time, error) {
	query := `
		SELECT DISTINCT date
		FROM activities
		ORDER BY date ASC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make([]time.Time, 0)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *activityRepository) ListByDay(ctx context.Context, day time.Time) ([]*domain.LocationSchedule, error) {
	nextDay := day.AddDate(0, 0, 1)

	locQuery := `
		SELECT id, name, created_at, updated_at
		FROM activity_locations
		ORDER BY name ASC
	`
	rows, err := r.DB.QueryContext(ctx, locQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]*domain.LocationSchedule, 0)
	byLocation := make(map[string]*domain.LocationSchedule)
	for rows.Next() {
		loc := &domain.ActivityLocation{}
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
			return nil, err
		}
		sched := &domain.LocationSchedule{
			Location:   loc,
			Activities: []*domain.ActivityWithSubscriptions{},
		}
		schedules = append(schedules, sched)
		byLocation[loc.ID] = sched
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	actQuery := `
		SELECT id, location_id, name, date, starts_at, ends_at, capacity, vacancy, created_at, updated_at
		FROM activities
		WHERE date >= $1 AND date < $2
		ORDER BY starts_at ASC
	`
	actRows, err := r.DB.QueryContext(ctx, actQuery, day, nextDay)
	if err != nil {
		return nil, err
	}
	defer actRows.Close()

	byActivity := make(map[string]*domain.ActivityWithSubscriptions)
	for actRows.Next() {
		a := &domain.Activity{}
		if err := actRows.Scan(
			&a.ID, &a.LocationID, &a.Name, &a.Date, &a.StartsAt, &a.EndsAt,
			&a.Capacity, &a.Vacancy, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entry := &domain.ActivityWithSubscriptions{
			Activity:      a,
			Subscriptions: []*domain.ActivitySubscription{},
		}
		byActivity[a.ID] = entry
		if sched, ok := byLocation[a.LocationID]; ok {
			sched.Activities = append(sched.Activities, entry)
		}
	}
	if err := actRows.Err(); err != nil {
		return nil, err
	}

	subQuery := `
		SELECT s.id, s.activity_id, s.ticket_id, s.created_at
		FROM activity_subscriptions s
		JOIN activities a ON a.id = s.activity_id
		WHERE a.date >= $1 AND a.date < $2
	`
	subRows, err := r.DB.QueryContext(ctx, subQuery, day, nextDay)
	if err != nil {
		return nil, err
	}
	defer subRows.Close()

	for subRows.Next() {
		s := &domain.ActivitySubscription{}
		if err := subRows.Scan(&s.ID, &s.ActivityID, &s.TicketID, &s.CreatedAt); err != nil {
			return nil, err
		}
		if entry, ok := byActivity[s.ActivityID]; ok {
			entry.Subscriptions = append(entry.Subscriptions, s)
		}
	}
	return schedules, subRows.Err()
}

func (r *activityRepository) ListSubscribedRanges(ctx context.Context, day time.Time, ticketID string) ([]domain.TimeRange, error) {
	nextDay := day.AddDate(0, 0, 1)
	query := `
		SELECT a.starts_at, a.ends_at
		FROM activity_subscriptions s
		JOIN activities a ON a.id = s.activity_id
		WHERE a.date >= $1 AND a.date < $2 AND s.ticket_id = $3
	`
	rows, err := r.DB.QueryContext(ctx, query, day, nextDay, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranges []domain.TimeRange
	for rows.Next() {
		var tr domain.TimeRange
		if err := rows.Scan(&tr.StartsAt, &tr.EndsAt); err != nil {
			return nil, err
		}
		ranges = append(ranges, tr)
	}
	return ranges, rows.Err()
}

func (r *activityRepository) GetSubscription(ctx context.Context, activityID, ticketID string) (*domain.ActivitySubscription, error) {
	query := `
		SELECT id, activity_id, ticket_id, created_at
		FROM activity_subscriptions
		WHERE activity_id = $1 AND ticket_id = $2
	`
	s := &domain.ActivitySubscription{}
	err := r.DB.QueryRowContext(ctx, query, activityID, ticketID).
		Scan(&s.ID, &s.ActivityID, &s.TicketID, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// Subscribe inserts the subscription row and applies the vacancy decrement
// as a conditional update in one transaction. The WHERE vacancy > 0 guard
// is what serializes concurrent subscribers racing for the last seat:
// exactly one of them matches the row, the rest roll back with
// ErrCapacityExceeded.
func (r *activityRepository) Subscribe(ctx context.Context, activityID, ticketID string) (*domain.ActivitySubscription, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin subscribe tx: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO activity_subscriptions (activity_id, ticket_id, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`
	sub := &domain.ActivitySubscription{
		ActivityID: activityID,
		TicketID:   ticketID,
	}
	if err := tx.QueryRowContext(ctx, insert, activityID, ticketID).Scan(&sub.ID, &sub.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("insert subscription: %w", err)
	}

	decrement := `
		UPDATE activities
		SET vacancy = vacancy - 1, updated_at = NOW()
		WHERE id = $1 AND vacancy > 0
	`
	result, err := tx.ExecContext(ctx, decrement, activityID)
	if err != nil {
		return nil, fmt.Errorf("decrement vacancy: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("decrement vacancy: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrCapacityExceeded
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit subscribe tx: %w", err)
	}
	return sub, nil
}

// Unsubscribe deletes the subscription row and applies the vacancy
// increment in the same transaction, clamped by WHERE vacancy < capacity so
// the counter can never exceed the activity's capacity.
func (r *activityRepository) Unsubscribe(ctx context.Context, subscriptionID, activityID string) (*domain.Activity, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin unsubscribe tx: %w", err)
	}
	defer tx.Rollback()

	del := `DELETE FROM activity_subscriptions WHERE id = $1`
	result, err := tx.ExecContext(ctx, del, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("delete subscription: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("delete subscription: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}

	increment := `
		UPDATE activities
		SET vacancy = vacancy + 1, updated_at = NOW()
		WHERE id = $1 AND vacancy < capacity
		RETURNING id, location_id, name, date, starts_at, ends_at, capacity, vacancy, created_at, updated_at
	`
	a := &domain.Activity{}
	err = tx.QueryRowContext(ctx, increment, activityID).Scan(
		&a.ID, &a.LocationID, &a.Name, &a.Date, &a.StartsAt, &a.EndsAt,
		&a.Capacity, &a.Vacancy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A subscription row existed, so vacancy had to be below
			// capacity. Reaching this means the ledger is out of sync.
			return nil, fmt.Errorf("increment vacancy for activity %s: counter already at capacity", activityID)
		}
		return nil, fmt.Errorf("increment vacancy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit unsubscribe tx: %w", err)
	}
	return a, nil
}

func (r *activityRepository) CreateLocation(ctx context.Context, name string) (*domain.ActivityLocation, error) {
	query := `
		INSERT INTO activity_locations (name, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at, updated_at
	`
	loc := &domain.ActivityLocation{}
	err := r.DB.QueryRowContext(ctx, query, name).
		Scan(&loc.ID, &loc.Name, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return loc, nil
}

func (r *activityRepository) CreateActivity(ctx context.Context, a *domain.Activity) error {
	query := `
		INSERT INTO activities (location_id, name, date, starts_at, ends_at, capacity, vacancy, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		a.LocationID, a.Name, a.Date, a.StartsAt, a.EndsAt, a.Capacity, a.Vacancy,
	).Scan(&a.ID)
}
