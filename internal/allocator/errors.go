// Package allocator implements the seat-inventory core: it decides
// whether a reservation request fits within the capacity of the
// schedule's train, prices it, and mutates the booking ledger.  All
// decisions for one schedule are serialized through a per-schedule lock
// so the sum of confirmed seats can never overshoot capacity, no matter
// how requests interleave.
package allocator

import (
	"errors"
	"fmt"
)

// ErrInvalidSeats is returned before any ledger access when the requested
// seat count is not a positive integer.
var ErrInvalidSeats = errors.New("seats must be a positive integer")

// ErrMissingUser is returned when a reservation carries no user id.
var ErrMissingUser = errors.New("user id is required")

// ErrMissingSchedule is returned when a reservation carries no schedule id.
var ErrMissingSchedule = errors.New("schedule id is required")

// ErrMissingBooking is returned when an amend or release carries no
// booking id.
var ErrMissingBooking = errors.New("booking id is required")

// ErrBookingCanceled is returned when an amend targets a booking that has
// already been canceled; canceled bookings no longer hold seats and
// cannot be resized.
var ErrBookingCanceled = errors.New("booking is canceled")

// ErrScheduleBusy is returned when serialized access to a schedule could
// not be obtained within the configured bound, even after the internal
// retries.  The condition is transient; callers may retry.
var ErrScheduleBusy = errors.New("schedule is contended, retry later")

// CapacityError rejects a reservation or amendment that does not fit in
// the schedule's remaining capacity.  Available carries the seat count
// the caller could still get (clamped at zero when an administrator has
// shrunk the train below current utilization).
type CapacityError struct {
	Requested uint32 // seats the caller asked for
	Available uint32 // seats that could still be granted
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough seats available: requested %d, available %d", e.Requested, e.Available)
}
