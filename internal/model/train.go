package model

import "time"

// Train describes a physical train and the total number of seats it
// provides on any schedule that uses it.  Capacity is the single source
// of truth for seat accounting: the sum of confirmed seats on a schedule
// may never exceed the capacity of the schedule's train.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – human-friendly train name.
//  Type      – service class, e.g. "InterCity" or "Local".
//  Capacity  – total seats available per schedule; must be positive.
//  CreatedAt – creation timestamp.
type Train struct {
	ID        uint64    `json:"id"`         // trains.id
	Name      string    `json:"name"`       // trains.name
	Type      string    `json:"type"`       // trains.type
	Capacity  uint32    `json:"capacity"`   // trains.capacity
	CreatedAt time.Time `json:"created_at"` // trains.created_at
}
