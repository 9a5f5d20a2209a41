// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a reservation is successfully
// allocated.  It carries enough information for downstream consumers to
// log, notify or feed analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID   uint64 `json:"booking_id"`
	UserID      uint64 `json:"user_id"`
	ScheduleID  uint64 `json:"schedule_id"`
	Seats       uint32 `json:"seats"`
	TotalCents  uint64 `json:"total_cents"`
	ConfirmedAt string `json:"confirmed_at"`
}

// BookingCanceledEvent is published when a booking is released and its
// seats return to the pool.
type BookingCanceledEvent struct {
	BookingID  uint64 `json:"booking_id"`
	UserID     uint64 `json:"user_id"`
	ScheduleID uint64 `json:"schedule_id"`
	Seats      uint32 `json:"seats"`
	CanceledAt string `json:"canceled_at"`
}
