package allocator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasiru/rail-booking/internal/model"
	"github.com/yasiru/rail-booking/internal/repository"
)

// memCatalog is an in-memory Catalog used by the tests.  Capacity can be
// edited mid-test to exercise the shrink-capacity policy.
type memCatalog struct {
	mu    sync.Mutex
	fares map[uint64]model.ScheduleFare
}

func newMemCatalog() *memCatalog {
	return &memCatalog{fares: make(map[uint64]model.ScheduleFare)}
}

func (c *memCatalog) add(scheduleID, trainID uint64, capacity, priceCents uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fares[scheduleID] = model.ScheduleFare{
		ScheduleID: scheduleID, TrainID: trainID, Capacity: capacity, PriceCents: priceCents,
	}
}

func (c *memCatalog) setCapacity(scheduleID uint64, capacity uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.fares[scheduleID]
	f.Capacity = capacity
	c.fares[scheduleID] = f
}

func (c *memCatalog) Fare(_ context.Context, scheduleID uint64) (model.ScheduleFare, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.fares[scheduleID]
	if !ok {
		return model.ScheduleFare{}, repository.ErrScheduleNotFound
	}
	return f, nil
}

// memLedger is an in-memory Ledger.  The optional onMutate hook runs
// after every mutation while the ledger mutex is held, letting tests
// observe utilization at each instant a write becomes visible.
type memLedger struct {
	mu       sync.Mutex
	nextID   uint64
	bookings map[uint64]*model.Booking
	onMutate func(l *memLedger)
}

func newMemLedger() *memLedger {
	return &memLedger{bookings: make(map[uint64]*model.Booking)}
}

func (l *memLedger) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (l *memLedger) SumConfirmedSeats(_ context.Context, scheduleID uint64) (uint32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sumLocked(scheduleID), nil
}

func (l *memLedger) sumLocked(scheduleID uint64) uint32 {
	var sum uint32
	for _, b := range l.bookings {
		if b.ScheduleID == scheduleID && b.Status == model.BookingConfirmed {
			sum += b.Seats
		}
	}
	return sum
}

func (l *memLedger) Create(_ context.Context, b *model.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	b.ID = l.nextID
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	l.bookings[b.ID] = &cp
	if l.onMutate != nil {
		l.onMutate(l)
	}
	return nil
}

func (l *memLedger) UpdateSeats(_ context.Context, id uint64, seats uint32, totalCents uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Seats = seats
	b.TotalCents = totalCents
	b.UpdatedAt = time.Now().UTC()
	if l.onMutate != nil {
		l.onMutate(l)
	}
	return nil
}

func (l *memLedger) Cancel(_ context.Context, id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = model.BookingCanceled
	b.UpdatedAt = time.Now().UTC()
	if l.onMutate != nil {
		l.onMutate(l)
	}
	return nil
}

const (
	testSchedule = uint64(7)
	testTrain    = uint64(3)
	testUser     = uint64(11)
)

func newTestAllocator(capacity, priceCents uint32) (*Allocator, *memCatalog, *memLedger) {
	cat := newMemCatalog()
	cat.add(testSchedule, testTrain, capacity, priceCents)
	led := newMemLedger()
	locks := NewScheduleLocks(2 * time.Second)
	return New(cat, led, locks), cat, led
}

func TestReserve_PricesBooking(t *testing.T) {
	a, _, _ := newTestAllocator(50, 10000) // 100.00 per seat

	b, err := a.Reserve(context.Background(), testUser, testSchedule, 3)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), b.Seats)
	assert.Equal(t, uint64(30000), b.TotalCents)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.Equal(t, model.PaymentPending, b.PaymentStatus)
	assert.NotZero(t, b.ID)
}

func TestReserve_Validation(t *testing.T) {
	a, _, _ := newTestAllocator(10, 500)
	ctx := context.Background()

	_, err := a.Reserve(ctx, testUser, testSchedule, 0)
	assert.ErrorIs(t, err, ErrInvalidSeats)

	_, err = a.Reserve(ctx, 0, testSchedule, 1)
	assert.ErrorIs(t, err, ErrMissingUser)

	_, err = a.Reserve(ctx, testUser, 0, 1)
	assert.ErrorIs(t, err, ErrMissingSchedule)

	_, err = a.Reserve(ctx, testUser, 999, 1)
	assert.ErrorIs(t, err, repository.ErrScheduleNotFound)
}

func TestReserve_ExactFitBoundary(t *testing.T) {
	a, _, _ := newTestAllocator(50, 500)
	ctx := context.Background()

	// Fill to 48 of 50.
	_, err := a.Reserve(ctx, testUser, testSchedule, 48)
	require.NoError(t, err)

	// A request for exactly the remaining 2 seats succeeds.
	_, err = a.Reserve(ctx, testUser, testSchedule, 2)
	require.NoError(t, err)

	// The very next request fails with available reported as 0.
	_, err = a.Reserve(ctx, testUser, testSchedule, 1)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, uint32(0), capErr.Available)
	assert.Equal(t, uint32(1), capErr.Requested)
}

func TestReserve_NoLostUpdate(t *testing.T) {
	a, _, led := newTestAllocator(1, 500)

	const n = 32
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(user uint64) {
			defer wg.Done()
			_, err := a.Reserve(context.Background(), user, testSchedule, 1)
			results <- err
		}(uint64(i + 1))
	}
	wg.Wait()
	close(results)

	var wins, rejects int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		var capErr *CapacityError
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, uint32(0), capErr.Available)
		rejects++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, rejects)

	sum, err := led.SumConfirmedSeats(context.Background(), testSchedule)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), sum)
}

func TestAmend_RepricesAndRevalidates(t *testing.T) {
	a, _, _ := newTestAllocator(10, 10000)
	ctx := context.Background()

	b, err := a.Reserve(ctx, testUser, testSchedule, 3)
	require.NoError(t, err)

	// Growing within headroom reprices.
	b2, err := a.Amend(ctx, b.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), b2.Seats)
	assert.Equal(t, uint64(50000), b2.TotalCents)

	// Another passenger takes the rest.
	_, err = a.Reserve(ctx, testUser+1, testSchedule, 5)
	require.NoError(t, err)

	// Growing past capacity is rejected and leaves the booking untouched.
	_, err = a.Amend(ctx, b.ID, 6)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, uint32(5), capErr.Available) // own 5 excluded, others hold 5 of 10

	kept, err := a.ledger.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), kept.Seats)
	assert.Equal(t, uint64(50000), kept.TotalCents)

	// Shrinking always fits.
	b3, err := a.Amend(ctx, b.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), b3.TotalCents)
}

func TestReserve_LargeTotalDoesNotWrap(t *testing.T) {
	// 50 seats at 100,000,000 cents each totals 5e9, past 32-bit range.
	const price = uint32(100_000_000)
	a, _, _ := newTestAllocator(100, price)

	b, err := a.Reserve(context.Background(), testUser, testSchedule, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000_000), b.TotalCents)

	b2, err := a.Amend(context.Background(), b.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, uint64(6_000_000_000), b2.TotalCents)
}

func TestAmend_Errors(t *testing.T) {
	a, _, _ := newTestAllocator(10, 500)
	ctx := context.Background()

	_, err := a.Amend(ctx, 0, 2)
	assert.ErrorIs(t, err, ErrMissingBooking)

	_, err = a.Amend(ctx, 42, 0)
	assert.ErrorIs(t, err, ErrInvalidSeats)

	_, err = a.Amend(ctx, 42, 2)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)

	b, err := a.Reserve(ctx, testUser, testSchedule, 2)
	require.NoError(t, err)
	require.NoError(t, a.Release(ctx, b.ID))

	_, err = a.Amend(ctx, b.ID, 3)
	assert.ErrorIs(t, err, ErrBookingCanceled)
}

func TestRelease_FreesCapacity(t *testing.T) {
	a, _, _ := newTestAllocator(10, 500)
	ctx := context.Background()

	_, err := a.Reserve(ctx, testUser, testSchedule, 6)
	require.NoError(t, err)
	b, err := a.Reserve(ctx, testUser, testSchedule, 4)
	require.NoError(t, err)

	// Full: the next seat is rejected.
	_, err = a.Reserve(ctx, testUser, testSchedule, 4)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)

	require.NoError(t, a.Release(ctx, b.ID))

	// The canceled booking's 4 seats are immediately reusable.
	_, err = a.Reserve(ctx, testUser, testSchedule, 4)
	assert.NoError(t, err)

	// Releasing again is a no-op, not an error.
	assert.NoError(t, a.Release(ctx, b.ID))
}

func TestShrinkCapacity_NonRetroactive(t *testing.T) {
	a, cat, led := newTestAllocator(40, 500)
	ctx := context.Background()

	b, err := a.Reserve(ctx, testUser, testSchedule, 40)
	require.NoError(t, err)

	// Administrator shrinks the train below current utilization.
	cat.setCapacity(testSchedule, 30)

	// The existing booking is not canceled...
	kept, err := led.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, kept.Status)

	// ...but new reservations see zero availability, clamped, not negative.
	_, err = a.Reserve(ctx, testUser, testSchedule, 1)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, uint32(0), capErr.Available)

	capacity, used, available, err := a.Utilization(ctx, testSchedule)
	require.NoError(t, err)
	assert.Equal(t, uint32(30), capacity)
	assert.Equal(t, uint32(40), used)
	assert.Equal(t, uint32(0), available)

	// Once utilization drops through cancellation, allocation resumes.
	require.NoError(t, a.Release(ctx, b.ID))
	_, err = a.Reserve(ctx, testUser, testSchedule, 30)
	assert.NoError(t, err)
}

func TestReserve_ContendedFailsFast(t *testing.T) {
	cat := newMemCatalog()
	cat.add(testSchedule, testTrain, 10, 500)
	locks := NewScheduleLocks(5 * time.Millisecond)
	a := New(cat, newMemLedger(), locks, WithRetries(1), WithBackoff(time.Millisecond))

	// Hold the schedule lock for the duration of the call.
	release, err := locks.Acquire(context.Background(), testSchedule)
	require.NoError(t, err)
	defer release()

	_, err = a.Reserve(context.Background(), testUser, testSchedule, 1)
	assert.ErrorIs(t, err, ErrScheduleBusy)
}

// TestInvariant_ConcurrentMix hammers one schedule with a mix of
// reserves, amends and releases and checks, at every instant a ledger
// write became visible, that confirmed seats never exceeded capacity.
func TestInvariant_ConcurrentMix(t *testing.T) {
	const capacity = 20
	a, _, led := newTestAllocator(capacity, 500)

	var maxSeen uint32
	led.onMutate = func(l *memLedger) {
		if s := l.sumLocked(testSchedule); s > maxSeen {
			maxSeen = s
		}
	}

	const workers = 16
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(user uint64) {
			defer wg.Done()
			ctx := context.Background()
			var mine []uint64
			for i := 0; i < 25; i++ {
				seats := uint32(i%3 + 1)
				if b, err := a.Reserve(ctx, user, testSchedule, seats); err == nil {
					mine = append(mine, b.ID)
				}
				if len(mine) > 0 {
					id := mine[i%len(mine)]
					switch i % 3 {
					case 0:
						_, _ = a.Amend(ctx, id, uint32(i%4+1))
					case 1:
						_ = a.Release(ctx, id)
					}
				}
			}
		}(uint64(w + 1))
	}
	wg.Wait()

	assert.LessOrEqual(t, maxSeen, uint32(capacity),
		"confirmed seats exceeded capacity at some observable instant")

	sum, err := led.SumConfirmedSeats(context.Background(), testSchedule)
	require.NoError(t, err)
	assert.LessOrEqual(t, sum, uint32(capacity))
}
