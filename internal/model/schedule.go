package model

import "time"

// Schedule is a timed trip operated by a train.  Every schedule carries a
// per-seat price in cents; the capacity available to bookings on the
// schedule is resolved transitively through the referenced train.
//
// Fields:
//  ID               – primary key identifier.
//  TrainID          – train operating this trip.
//  DepartureStation – name of the departure station.
//  ArrivalStation   – name of the arrival station.
//  DepartsAt        – scheduled departure time (UTC).
//  ArrivesAt        – scheduled arrival time (UTC).
//  PriceCents       – price per seat in cents; must be positive.
//  CreatedAt        – creation timestamp.
type Schedule struct {
	ID               uint64    `json:"id"`                // schedules.id
	TrainID          uint64    `json:"train_id"`          // schedules.train_id
	DepartureStation string    `json:"departure_station"` // schedules.departure_station
	ArrivalStation   string    `json:"arrival_station"`   // schedules.arrival_station
	DepartsAt        time.Time `json:"departs_at"`        // schedules.departs_at
	ArrivesAt        time.Time `json:"arrives_at"`        // schedules.arrives_at
	PriceCents       uint32    `json:"price_cents"`       // schedules.price_cents
	CreatedAt        time.Time `json:"created_at"`        // schedules.created_at
}

// ScheduleFare is the slice of catalog data the allocator needs to decide
// a reservation: which train runs the schedule, how many seats that train
// has and what one seat costs.
type ScheduleFare struct {
	ScheduleID uint64 // schedules.id
	TrainID    uint64 // trains.id
	Capacity   uint32 // trains.capacity
	PriceCents uint32 // schedules.price_cents
}
