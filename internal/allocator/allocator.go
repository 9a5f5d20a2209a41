package allocator

import (
	"context"
	"errors"
	"time"

	"github.com/yasiru/rail-booking/internal/model"
)

// Catalog resolves a schedule to the reference data a decision needs:
// the operating train, its current capacity and the per-seat price.
type Catalog interface {
	Fare(ctx context.Context, scheduleID uint64) (model.ScheduleFare, error)
}

// Ledger is the booking-store surface the allocator reads and mutates.
// Implementations must make every mutation visible to SumConfirmedSeats
// by the time the call returns; the allocator releases the schedule lock
// only after its writes have completed.
type Ledger interface {
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	SumConfirmedSeats(ctx context.Context, scheduleID uint64) (uint32, error)
	Create(ctx context.Context, b *model.Booking) error
	UpdateSeats(ctx context.Context, id uint64, seats uint32, totalCents uint64) error
	Cancel(ctx context.Context, id uint64) error
}

// Allocator is the capacity-enforcement core.  All seat mutations for a
// schedule flow through it; no other component may change the seats or
// status of a confirmed booking.
type Allocator struct {
	catalog Catalog
	ledger  Ledger
	locks   *ScheduleLocks
	retries int           // extra lock-acquisition attempts on contention
	backoff time.Duration // initial delay between attempts, doubled each retry
}

// Option customizes an Allocator.
type Option func(*Allocator)

// WithRetries sets how many additional acquisition attempts are made
// after the first one fails with contention.
func WithRetries(n int) Option {
	return func(a *Allocator) {
		if n >= 0 {
			a.retries = n
		}
	}
}

// WithBackoff sets the initial delay between acquisition attempts.
func WithBackoff(d time.Duration) Option {
	return func(a *Allocator) {
		if d > 0 {
			a.backoff = d
		}
	}
}

// New constructs an Allocator.  Defaults: 2 retries, 50ms initial backoff.
func New(catalog Catalog, ledger Ledger, locks *ScheduleLocks, opts ...Option) *Allocator {
	a := &Allocator{
		catalog: catalog,
		ledger:  ledger,
		locks:   locks,
		retries: 2,
		backoff: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Reserve allocates seats on a schedule for a user.  It either creates a
// CONFIRMED booking priced at seats × schedule price, or rejects without
// creating anything: a CapacityError carrying the currently available
// seat count, a not-found error from the catalog, or ErrScheduleBusy
// under sustained contention.  There is no partial grant.
func (a *Allocator) Reserve(ctx context.Context, userID, scheduleID uint64, seats uint32) (*model.Booking, error) {
	if seats == 0 {
		return nil, ErrInvalidSeats
	}
	if userID == 0 {
		return nil, ErrMissingUser
	}
	if scheduleID == 0 {
		return nil, ErrMissingSchedule
	}

	release, err := a.acquire(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	defer release()

	fare, err := a.catalog.Fare(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	used, err := a.ledger.SumConfirmedSeats(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	available := headroom(fare.Capacity, used)
	if seats > available {
		return nil, &CapacityError{Requested: seats, Available: available}
	}

	b := &model.Booking{
		UserID:        userID,
		ScheduleID:    scheduleID,
		Seats:         seats,
		TotalCents:    uint64(seats) * uint64(fare.PriceCents),
		Status:        model.BookingConfirmed,
		PaymentStatus: model.PaymentPending,
	}
	if err := a.ledger.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Amend resizes an existing confirmed booking.  Capacity is re-validated
// with the booking's own prior seats excluded from utilization, so a
// booking can always shrink and can grow into whatever headroom remains.
// On rejection the stored booking is left completely unchanged.
func (a *Allocator) Amend(ctx context.Context, bookingID uint64, newSeats uint32) (*model.Booking, error) {
	if newSeats == 0 {
		return nil, ErrInvalidSeats
	}
	if bookingID == 0 {
		return nil, ErrMissingBooking
	}

	// A first unlocked read learns which schedule to serialize on.
	b, err := a.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	release, err := a.acquire(ctx, b.ScheduleID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read under the lock: the booking may have been canceled or
	// resized between the unlocked read and acquisition.
	b, err = a.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != model.BookingConfirmed {
		return nil, ErrBookingCanceled
	}

	fare, err := a.catalog.Fare(ctx, b.ScheduleID)
	if err != nil {
		return nil, err
	}
	used, err := a.ledger.SumConfirmedSeats(ctx, b.ScheduleID)
	if err != nil {
		return nil, err
	}
	// Exclude this booking's current seats: they are being replaced.
	others := used - b.Seats
	available := headroom(fare.Capacity, others)
	if newSeats > available {
		return nil, &CapacityError{Requested: newSeats, Available: available}
	}

	total := uint64(newSeats) * uint64(fare.PriceCents)
	if err := a.ledger.UpdateSeats(ctx, bookingID, newSeats, total); err != nil {
		return nil, err
	}
	b.Seats = newSeats
	b.TotalCents = total
	return b, nil
}

// Release cancels a booking, immediately freeing its seats for the next
// reserve or amend on the same schedule.  Releasing an already canceled
// booking succeeds without effect.
func (a *Allocator) Release(ctx context.Context, bookingID uint64) error {
	if bookingID == 0 {
		return ErrMissingBooking
	}

	b, err := a.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	release, err := a.acquire(ctx, b.ScheduleID)
	if err != nil {
		return err
	}
	defer release()

	return a.ledger.Cancel(ctx, bookingID)
}

// Utilization reports a schedule's capacity accounting for the admin
// surface: current confirmed seats and the headroom a new reservation
// would see.  It is a point-in-time read and takes no lock.
func (a *Allocator) Utilization(ctx context.Context, scheduleID uint64) (capacity, used, available uint32, err error) {
	fare, err := a.catalog.Fare(ctx, scheduleID)
	if err != nil {
		return 0, 0, 0, err
	}
	used, err = a.ledger.SumConfirmedSeats(ctx, scheduleID)
	if err != nil {
		return 0, 0, 0, err
	}
	return fare.Capacity, used, headroom(fare.Capacity, used), nil
}

// acquire obtains the schedule lock, retrying a bounded number of times
// with doubling backoff when the lock is contended.
func (a *Allocator) acquire(ctx context.Context, scheduleID uint64) (func(), error) {
	delay := a.backoff
	for attempt := 0; ; attempt++ {
		release, err := a.locks.Acquire(ctx, scheduleID)
		if err == nil {
			return release, nil
		}
		if !errors.Is(err, ErrScheduleBusy) || attempt >= a.retries {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// headroom clamps capacity − used at zero.  Utilization above capacity is
// legal after an administrator shrinks a train; the surplus is never
// auto-canceled, it just blocks new allocations.
func headroom(capacity, used uint32) uint32 {
	if used >= capacity {
		return 0
	}
	return capacity - used
}
