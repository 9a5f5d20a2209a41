package model

import "time"

// Booking status values.  A booking is created CONFIRMED by a successful
// reservation and flips to CANCELED on release.  There is no pending
// state: a request either allocates all its seats or creates nothing.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCanceled  = "CANCELED"
)

// Payment status values.  Payment is an orthogonal flag maintained by the
// payment endpoints; it never influences seat accounting.
const (
	PaymentPending  = "PENDING"
	PaymentPaid     = "PAID"
	PaymentRejected = "REJECTED"
)

// Booking records a passenger's seats on a schedule.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – passenger who owns the booking.
//  ScheduleID    – schedule the seats are booked on.
//  Seats         – number of seats allocated; always positive.
//  TotalCents    – Seats × schedule price at allocation time, in cents;
//                  64-bit so a large booking on a high-priced schedule
//                  cannot wrap.
//  Status        – CONFIRMED or CANCELED.
//  PaymentStatus – PENDING, PAID or REJECTED.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Booking struct {
	ID            uint64    `json:"id"`             // bookings.id
	UserID        uint64    `json:"user_id"`        // bookings.user_id
	ScheduleID    uint64    `json:"schedule_id"`    // bookings.schedule_id
	Seats         uint32    `json:"seats"`          // bookings.seats
	TotalCents    uint64    `json:"total_cents"`    // bookings.total_cents
	Status        string    `json:"status"`         // bookings.status
	PaymentStatus string    `json:"payment_status"` // bookings.payment_status
	CreatedAt     time.Time `json:"created_at"`     // bookings.created_at
	UpdatedAt     time.Time `json:"updated_at"`     // bookings.updated_at
}
