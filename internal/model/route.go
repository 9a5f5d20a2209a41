package model

import "time"

// Route links an origin station to a destination station.  Routes are
// reference data used by administrators when planning schedules; they do
// not participate in seat accounting.
type Route struct {
	ID            uint64    `json:"id"`             // routes.id
	OriginID      uint64    `json:"origin_id"`      // routes.origin_station_id
	DestinationID uint64    `json:"destination_id"` // routes.destination_station_id
	DistanceKM    uint32    `json:"distance_km"`    // routes.distance_km
	CreatedAt     time.Time `json:"created_at"`     // routes.created_at
}
