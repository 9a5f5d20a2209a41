package model

import "time"

// User roles.  ADMIN manages reference data and payments; PASSENGER
// creates and manages their own bookings.
const (
	RoleAdmin     = "ADMIN"
	RolePassenger = "PASSENGER"
)

// User represents an application user record as stored in the `users`
// table.  Handlers define their own response types and never expose the
// password hash.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN or PASSENGER.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}
