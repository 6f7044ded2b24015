package domain

import (
	"context"
	"time"
)

// ActivityLocation represents a named room or venue hosting activities.
// Locations are immutable once created.
// swagger:model ActivityLocation
type ActivityLocation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Activity represents a scheduled conference session with a fixed time
// window and a finite number of seats. Date carries the calendar day only;
// StartsAt and EndsAt carry the instants. Vacancy is mutated exclusively by
// ActivityRepository.Subscribe and Unsubscribe and always satisfies
// 0 <= Vacancy <= Capacity.
// swagger:model Activity
type Activity struct {
	ID         string    `json:"id"`
	LocationID string    `json:"location_id"`
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	Capacity   int       `json:"capacity"`
	Vacancy    int       `json:"vacancy"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewActivity returns a new Activity. ID is typically set by the repository
// on create. Vacancy starts equal to Capacity.
func NewActivity(locationID, name string, date, startsAt, endsAt time.Time, capacity int, createdAt, updatedAt time.Time) *Activity {
	return &Activity{
		LocationID: locationID,
		Name:       name,
		Date:       date,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		Capacity:   capacity,
		Vacancy:    capacity,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

// ActivitySubscription records one ticket's reservation of one seat in one
// activity. At most one subscription exists per (ticket, activity) pair.
// swagger:model ActivitySubscription
type ActivitySubscription struct {
	ID         string    `json:"id"`
	ActivityID string    `json:"activity_id"`
	TicketID   string    `json:"ticket_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TimeRange is the (start, end) pair of an activity, used for overlap checks.
type TimeRange struct {
	StartsAt time.Time
	EndsAt   time.Time
}

// ActivityWithSubscriptions bundles an activity with its current subscriber
// list for the day-schedule view.
type ActivityWithSubscriptions struct {
	Activity      *Activity               `json:"activity"`
	Subscriptions []*ActivitySubscription `json:"subscriptions"`
}

// LocationSchedule is one location with its activities for a given day,
// ordered by start time ascending.
type LocationSchedule struct {
	Location   *ActivityLocation            `json:"location"`
	Activities []*ActivityWithSubscriptions `json:"activities"`
}

// ActivityRepository defines storage for the activity catalog and the
// subscription ledger. Subscribe and Unsubscribe are the only operations
// that mutate vacancy; both run the row mutation and the paired vacancy
// update inside a single transaction with a conditional vacancy write, so
// concurrent callers racing for the last seat cannot drive vacancy out of
// range.
type ActivityRepository interface {
	GetByID(ctx context.Context, id string) (*Activity, error)
	// ListDays returns the distinct calendar days that have at least one
	// activity, ascending.
	ListDays(ctx context.Context) ([]time.Time, error)
	// ListByDay returns every location with its activities falling in the
	// half-open window [day, day+24h), activities ordered by start time.
	ListByDay(ctx context.Context, day time.Time) ([]*LocationSchedule, error)
	// ListSubscribedRanges returns the (start, end) pairs of activities the
	// ticket is already subscribed to on the given day.
	ListSubscribedRanges(ctx context.Context, day time.Time, ticketID string) ([]TimeRange, error)
	GetSubscription(ctx context.Context, activityID, ticketID string) (*ActivitySubscription, error)
	// Subscribe inserts the subscription and decrements vacancy atomically.
	// Returns ErrCapacityExceeded when vacancy is zero and
	// ErrAlreadySubscribed when the (ticket, activity) pair already exists.
	Subscribe(ctx context.Context, activityID, ticketID string) (*ActivitySubscription, error)
	// Unsubscribe deletes the subscription and increments vacancy
	// atomically, clamped at capacity. Returns the updated activity.
	Unsubscribe(ctx context.Context, subscriptionID, activityID string) (*Activity, error)

	// Catalog administration, used by seeding.
	CreateLocation(ctx context.Context, name string) (*ActivityLocation, error)
	CreateActivity(ctx context.Context, activity *Activity) error
}

// ScheduleCache is an advisory read cache for the day list and day
// schedules. It is never the source of truth for vacancy counts; services
// treat every error as a miss and invalidate it on successful mutation.
type ScheduleCache interface {
	GetDays(ctx context.Context) ([]time.Time, error)
	SetDays(ctx context.Context, days []time.Time) error
	GetDaySchedule(ctx context.Context, day time.Time) ([]*LocationSchedule, error)
	SetDaySchedule(ctx context.Context, day time.Time, schedule []*LocationSchedule) error
	Invalidate(ctx context.Context) error
}

// ActivityService defines the attendee-facing activity operations.
type ActivityService interface {
	GetDays(ctx context.Context) ([]time.Time, error)
	GetDaySchedule(ctx context.Context, day time.Time) ([]*LocationSchedule, error)
	// GetSubscription returns the caller's subscription to the activity, or
	// ErrNotFound when the caller is not subscribed.
	GetSubscription(ctx context.Context, userID, activityID string) (*ActivitySubscription, error)
	// Subscribe runs the eligibility gate, the time-conflict gate, and the
	// capacity ledger, in that order.
	Subscribe(ctx context.Context, userID, activityID string) (*ActivitySubscription, error)
	// Unsubscribe re-derives the caller's ticket, requires an existing
	// subscription, and reverses the ledger entry.
	Unsubscribe(ctx context.Context, userID, activityID string) (*Activity, error)
}
