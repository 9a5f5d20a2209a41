package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yasiru/rail-booking/internal/model"
)

// RouteRepo encapsulates all database queries related to routes.
type RouteRepo struct {
	db *sql.DB
}

// NewRouteRepo constructs a RouteRepo with the provided DB handle.
func NewRouteRepo(db *sql.DB) *RouteRepo { return &RouteRepo{db: db} }

// Create inserts a new route.  Both stations must exist; a foreign key
// violation surfaces as a driver error which handlers map to 400.
func (r *RouteRepo) Create(ctx context.Context, rt *model.Route) error {
	const qInsert = `INSERT INTO routes (origin_station_id, destination_station_id, distance_km) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, rt.OriginID, rt.DestinationID, rt.DistanceKM)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM routes WHERE id = ?`, rt.ID).Scan(&rt.CreatedAt)
}

// GetByID fetches a route by id, returning ErrRouteNotFound when absent.
func (r *RouteRepo) GetByID(ctx context.Context, id uint64) (*model.Route, error) {
	const q = `SELECT id, origin_station_id, destination_station_id, distance_km, created_at FROM routes WHERE id = ?`
	var rt model.Route
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&rt.ID, &rt.OriginID, &rt.DestinationID, &rt.DistanceKM, &rt.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// List returns all routes ordered by id.
func (r *RouteRepo) List(ctx context.Context) ([]*model.Route, error) {
	const q = `SELECT id, origin_station_id, destination_station_id, distance_km, created_at FROM routes ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Route, 0)
	for rows.Next() {
		rt := new(model.Route)
		if err := rows.Scan(&rt.ID, &rt.OriginID, &rt.DestinationID, &rt.DistanceKM, &rt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites the endpoints and distance of an existing route.
func (r *RouteRepo) Update(ctx context.Context, rt *model.Route) error {
	const q = `UPDATE routes SET origin_station_id = ?, destination_station_id = ?, distance_km = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, rt.OriginID, rt.DestinationID, rt.DistanceKM, rt.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM routes WHERE id = ?`, rt.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRouteNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a route by id.
func (r *RouteRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM routes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRouteNotFound
	}
	return nil
}
