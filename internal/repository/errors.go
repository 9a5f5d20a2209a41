// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// allocator and handlers to distinguish between different failure
// scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrTrainNotFound is returned when no train row matches the given id.
var ErrTrainNotFound = errors.New("train not found")

// ErrStationNotFound is returned when no station row matches the given id.
var ErrStationNotFound = errors.New("station not found")

// ErrRouteNotFound is returned when no route row matches the given id.
var ErrRouteNotFound = errors.New("route not found")

// ErrScheduleNotFound is returned when no schedule row matches the given
// id, or when a fare lookup cannot resolve the schedule's train.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrBookingNotFound is returned when no booking row matches the given id.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound is returned when no user row matches the given id or email.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when registration hits the unique email index.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when a delete cannot be performed because of
// dependent records, such as removing a schedule that still has confirmed
// bookings. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
