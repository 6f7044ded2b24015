package domain

import "errors"

// Sentinel errors shared across services. Delivery maps each one to exactly
// one HTTP status code.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrIneligible is returned when a business-rule gate fails: missing
	// enrollment, unpaid or remote ticket, time conflict, or an attempt to
	// unsubscribe from an activity the caller never joined.
	ErrIneligible = errors.New("cannot subscribe to this activity")
	// ErrCapacityExceeded is returned when an activity has no vacancy left.
	ErrCapacityExceeded = errors.New("activity has no remaining vacancy")
	// ErrAlreadySubscribed is returned when a ticket already holds a
	// subscription for the activity.
	ErrAlreadySubscribed = errors.New("already subscribed to this activity")
	// ErrInvalidInput is returned for malformed or out-of-range input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is returned on failed login attempts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail is returned when signing up with an email that is
	// already registered.
	ErrDuplicateEmail = errors.New("email already in use")
)
