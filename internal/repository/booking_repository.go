package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yasiru/rail-booking/internal/model"
)

// BookingRepo is the durable ledger of booking records.  It offers plain
// lookups plus the aggregate the allocator bases every decision on:
// the sum of confirmed seats for a schedule.
//
// The repo performs no capacity checking of its own.  Mutations that
// participate in an allocation decision must only be issued while the
// caller holds the schedule's lock; each statement commits before it
// returns, so the sum observed by the next lock holder always reflects
// completed decisions.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create inserts a new booking row and populates the generated ID and
// timestamp fields on the provided record.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const qInsert = `INSERT INTO bookings (user_id, schedule_id, seats, total_cents, status, payment_status)
	                 VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		b.UserID, b.ScheduleID, b.Seats, b.TotalCents, b.Status, b.PaymentStatus)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const qSelect = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// GetByID fetches a booking by id, returning ErrBookingNotFound when absent.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT id, user_id, schedule_id, seats, total_cents, status, payment_status, created_at, updated_at
	           FROM bookings WHERE id = ?`
	var b model.Booking
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.UserID, &b.ScheduleID, &b.Seats, &b.TotalCents,
		&b.Status, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// SumConfirmedSeats returns the current utilization of a schedule: the
// total seats across its CONFIRMED bookings, 0 when there are none.
func (r *BookingRepo) SumConfirmedSeats(ctx context.Context, scheduleID uint64) (uint32, error) {
	const q = `SELECT COALESCE(SUM(seats), 0) FROM bookings WHERE schedule_id = ? AND status = 'CONFIRMED'`
	var sum uint32
	if err := r.db.QueryRowContext(ctx, q, scheduleID).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

// UpdateSeats overwrites seats and total price of a booking.  The caller
// has already re-validated capacity for the new seat count.
func (r *BookingRepo) UpdateSeats(ctx context.Context, id uint64, seats uint32, totalCents uint64) error {
	const q = `UPDATE bookings SET seats = ?, total_cents = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, seats, totalCents, id)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, res, id)
}

// Cancel flips a booking's status to CANCELED, freeing its seats for the
// next allocation decision on the schedule.  Canceling an already
// canceled booking is a no-op.
func (r *BookingRepo) Cancel(ctx context.Context, id uint64) error {
	const q = `UPDATE bookings SET status = 'CANCELED' WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, res, id)
}

// UpdatePaymentStatus sets the orthogonal payment flag.  It never touches
// seats or status and therefore needs no schedule lock.
func (r *BookingRepo) UpdatePaymentStatus(ctx context.Context, id uint64, status string) error {
	const q = `UPDATE bookings SET payment_status = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, res, id)
}

// ListBySchedule returns all bookings for a schedule, any order.
func (r *BookingRepo) ListBySchedule(ctx context.Context, scheduleID uint64) ([]*model.Booking, error) {
	const q = `SELECT id, user_id, schedule_id, seats, total_cents, status, payment_status, created_at, updated_at
	           FROM bookings WHERE schedule_id = ?`
	return r.queryList(ctx, q, scheduleID)
}

// ListByUser returns a user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Booking, error) {
	const q = `SELECT id, user_id, schedule_id, seats, total_cents, status, payment_status, created_at, updated_at
	           FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	return r.queryList(ctx, q, userID)
}

// ListAll returns every booking, newest first; used by admin views.
func (r *BookingRepo) ListAll(ctx context.Context) ([]*model.Booking, error) {
	const q = `SELECT id, user_id, schedule_id, seats, total_cents, status, payment_status, created_at, updated_at
	           FROM bookings ORDER BY created_at DESC, id DESC`
	return r.queryList(ctx, q)
}

// Delete removes a booking row entirely.  Cancellation is the normal
// path; hard deletion exists for admin cleanup of canceled records.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// Count returns the number of bookings; used by the dashboard.
func (r *BookingRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&n)
	return n, err
}

func (r *BookingRepo) queryList(ctx context.Context, q string, args ...any) ([]*model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Booking, 0)
	for rows.Next() {
		b := new(model.Booking)
		if err := rows.Scan(&b.ID, &b.UserID, &b.ScheduleID, &b.Seats, &b.TotalCents,
			&b.Status, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// checkAffected distinguishes "row missing" from "values unchanged" after
// an UPDATE: MySQL reports zero affected rows for both.
func (r *BookingRepo) checkAffected(ctx context.Context, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM bookings WHERE id = ?`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBookingNotFound
			}
			return err
		}
	}
	return nil
}
