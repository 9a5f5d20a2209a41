package model

import "time"

// Station is a named stop on the railway network.
type Station struct {
	ID        uint64    `json:"id"`         // stations.id
	Name      string    `json:"name"`       // stations.name
	City      string    `json:"city"`       // stations.city
	CreatedAt time.Time `json:"created_at"` // stations.created_at
}
