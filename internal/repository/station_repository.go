package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yasiru/rail-booking/internal/model"
)

// StationRepo encapsulates all database queries related to stations.
type StationRepo struct {
	db *sql.DB
}

// NewStationRepo constructs a StationRepo with the provided DB handle.
func NewStationRepo(db *sql.DB) *StationRepo { return &StationRepo{db: db} }

// Create inserts a new station and populates ID and CreatedAt.
func (r *StationRepo) Create(ctx context.Context, s *model.Station) error {
	const qInsert = `INSERT INTO stations (name, city) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, s.Name, s.City)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM stations WHERE id = ?`, s.ID).Scan(&s.CreatedAt)
}

// GetByID fetches a station by id, returning ErrStationNotFound when absent.
func (r *StationRepo) GetByID(ctx context.Context, id uint64) (*model.Station, error) {
	const q = `SELECT id, name, city, created_at FROM stations WHERE id = ?`
	var s model.Station
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.City, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns all stations ordered by id.
func (r *StationRepo) List(ctx context.Context) ([]*model.Station, error) {
	const q = `SELECT id, name, city, created_at FROM stations ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Station, 0)
	for rows.Next() {
		s := new(model.Station)
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites name and city of an existing station.
func (r *StationRepo) Update(ctx context.Context, s *model.Station) error {
	const q = `UPDATE stations SET name = ?, city = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.City, s.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM stations WHERE id = ?`, s.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrStationNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a station, returning ErrConflict when routes still
// reference it.
func (r *StationRepo) Delete(ctx context.Context, id uint64) error {
	var count int
	const qRef = `SELECT COUNT(*) FROM routes WHERE origin_station_id = ? OR destination_station_id = ?`
	if err := r.db.QueryRowContext(ctx, qRef, id, id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM stations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStationNotFound
	}
	return nil
}
