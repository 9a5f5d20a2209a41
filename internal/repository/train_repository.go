package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yasiru/rail-booking/internal/model"
)

// TrainRepo encapsulates all database queries related to trains.  It
// depends on a sql.DB connection which should be configured elsewhere.
type TrainRepo struct {
	db *sql.DB
}

// NewTrainRepo constructs a TrainRepo with the provided DB handle.
func NewTrainRepo(db *sql.DB) *TrainRepo { return &TrainRepo{db: db} }

// Create inserts a new train.  On success the train's ID field is
// populated with the auto-generated value and CreatedAt is read back so
// callers receive a fully populated record.
func (r *TrainRepo) Create(ctx context.Context, t *model.Train) error {
	const qInsert = `INSERT INTO trains (name, type, capacity) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, t.Name, t.Type, t.Capacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const qSelect = `SELECT created_at FROM trains WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, t.ID).Scan(&t.CreatedAt)
}

// GetByID fetches a train by its ID.  It returns ErrTrainNotFound when
// no row exists.
func (r *TrainRepo) GetByID(ctx context.Context, id uint64) (*model.Train, error) {
	const q = `SELECT id, name, type, capacity, created_at FROM trains WHERE id = ?`
	var t model.Train
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.Type, &t.Capacity, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns all trains ordered by id.
func (r *TrainRepo) List(ctx context.Context) ([]*model.Train, error) {
	const q = `SELECT id, name, type, capacity, created_at FROM trains ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Train, 0)
	for rows.Next() {
		t := new(model.Train)
		if err := rows.Scan(&t.ID, &t.Name, &t.Type, &t.Capacity, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites name, type and capacity of an existing train.  A
// capacity change takes effect for future allocation decisions only:
// confirmed bookings are never revisited, so lowering capacity below the
// current utilization of one of the train's schedules simply blocks new
// reservations on it until cancellations catch up.
func (r *TrainRepo) Update(ctx context.Context, t *model.Train) error {
	const q = `UPDATE trains SET name = ?, type = ?, capacity = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Type, t.Capacity, t.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 when the values are unchanged; check existence.
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM trains WHERE id = ?`, t.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTrainNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a train.  It returns ErrConflict when schedules still
// reference the train and ErrTrainNotFound when the row does not exist.
func (r *TrainRepo) Delete(ctx context.Context, id uint64) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedules WHERE train_id = ?`, id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM trains WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTrainNotFound
	}
	return nil
}

// Count returns the number of trains; used by the dashboard.
func (r *TrainRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trains`).Scan(&n)
	return n, err
}
