package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yasiru/rail-booking/internal/model"
)

// ScheduleRepo encapsulates all database queries related to schedules.
// Beyond plain CRUD it implements the catalog lookup used by the
// allocator: resolving a schedule to its train's capacity and its
// per-seat price in one query.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo constructs a ScheduleRepo with the provided DB handle.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// Create inserts a new schedule.  The referenced train must exist; the
// caller is expected to have validated it via TrainRepo.GetByID.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	const qInsert = `INSERT INTO schedules
	        (train_id, departure_station, arrival_station, departs_at, arrives_at, price_cents)
	        VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		s.TrainID, s.DepartureStation, s.ArrivalStation, s.DepartsAt.UTC(), s.ArrivesAt.UTC(), s.PriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM schedules WHERE id = ?`, s.ID).Scan(&s.CreatedAt)
}

// GetByID fetches a schedule by id, returning ErrScheduleNotFound when
// absent.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	const q = `SELECT id, train_id, departure_station, arrival_station, departs_at, arrives_at, price_cents, created_at
	           FROM schedules WHERE id = ?`
	var s model.Schedule
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.TrainID, &s.DepartureStation, &s.ArrivalStation,
		&s.DepartsAt, &s.ArrivesAt, &s.PriceCents, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Fare resolves a schedule to the data an allocation decision needs: the
// operating train, that train's current capacity and the per-seat price.
// The train's capacity is read at call time, so an administrator's
// capacity edit is visible to the next decision without any cache
// invalidation.  Returns ErrScheduleNotFound when the join produces no
// row (missing schedule or dangling train reference).
func (r *ScheduleRepo) Fare(ctx context.Context, scheduleID uint64) (model.ScheduleFare, error) {
	const q = `SELECT s.id, s.train_id, t.capacity, s.price_cents
	           FROM schedules s
	           JOIN trains t ON t.id = s.train_id
	           WHERE s.id = ?`
	var f model.ScheduleFare
	err := r.db.QueryRowContext(ctx, q, scheduleID).Scan(&f.ScheduleID, &f.TrainID, &f.Capacity, &f.PriceCents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ScheduleFare{}, ErrScheduleNotFound
		}
		return model.ScheduleFare{}, err
	}
	return f, nil
}

// List returns all schedules ordered by departure time.
func (r *ScheduleRepo) List(ctx context.Context) ([]*model.Schedule, error) {
	const q = `SELECT id, train_id, departure_station, arrival_station, departs_at, arrives_at, price_cents, created_at
	           FROM schedules ORDER BY departs_at, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Schedule, 0)
	for rows.Next() {
		s := new(model.Schedule)
		if err := rows.Scan(&s.ID, &s.TrainID, &s.DepartureStation, &s.ArrivalStation,
			&s.DepartsAt, &s.ArrivesAt, &s.PriceCents, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites the mutable fields of a schedule.  Capacity is not a
// schedule attribute and cannot be edited here; it belongs to the train.
func (r *ScheduleRepo) Update(ctx context.Context, s *model.Schedule) error {
	const q = `UPDATE schedules
	           SET train_id = ?, departure_station = ?, arrival_station = ?, departs_at = ?, arrives_at = ?, price_cents = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		s.TrainID, s.DepartureStation, s.ArrivalStation, s.DepartsAt.UTC(), s.ArrivesAt.UTC(), s.PriceCents, s.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM schedules WHERE id = ?`, s.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrScheduleNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a schedule.  It refuses with ErrConflict while confirmed
// bookings still reference it so the capacity invariant keeps a
// well-defined subject.
func (r *ScheduleRepo) Delete(ctx context.Context, id uint64) error {
	var count int
	const qRef = `SELECT COUNT(*) FROM bookings WHERE schedule_id = ? AND status = 'CONFIRMED'`
	if err := r.db.QueryRowContext(ctx, qRef, id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// Count returns the number of schedules; used by the dashboard.
func (r *ScheduleRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedules`).Scan(&n)
	return n, err
}
