// Business-rule failures of the booking engine. These are ordinary
// results, not system errors: they are detected before any mutating
// write, trigger a rollback, and map to a specific single-line message
// for the user. Transient store conflicts never appear here; the
// engine absorbs them by retrying.
package booking

import (
	"errors"
	"fmt"
)

// ErrNotLoggedIn is returned when an operation runs without a session.
var ErrNotLoggedIn = errors.New("not logged in")

// ErrNoSuchItinerary is returned when the requested index does not
// address the session's current search result, including indices left
// over from an earlier search.
var ErrNoSuchItinerary = errors.New("no such itinerary")

// ErrDuplicateDateBooking enforces the one-booking-per-day rule: the
// user already holds an active reservation with the same flight date.
var ErrDuplicateDateBooking = errors.New("cannot book two flights in the same day")

// ErrCapacityExceeded is returned when any leg of the itinerary has no
// seats left.
var ErrCapacityExceeded = errors.New("flight is fully booked")

// ErrReservationNotFound covers a missing reservation, a reservation
// owned by someone else, and (for Pay) one that is not pending-unpaid.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrAlreadyCanceled is returned when canceling a reservation twice.
// Cancellation is terminal; the second attempt changes nothing.
var ErrAlreadyCanceled = errors.New("reservation already canceled")

// InsufficientFundsError reports a failed payment together with the
// balance and cost involved, so the user message can name both values.
type InsufficientFundsError struct {
	Balance int
	Cost    int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("user has only %d in account but itinerary costs %d", e.Balance, e.Cost)
}
