package models

import "time"

// VesselArrival describes an expected carrier vessel shown on the landing page.
type VesselArrival struct {
	Vessel string    `json:"vessel"`
	Origin string    `json:"origin"`
	ETA    time.Time `json:"eta"`
	Units  int       `json:"units"`
	Status string    `json:"status"`
}

// ArrivalsSnapshot is one refresh of the simulated port-authority feed.
type ArrivalsSnapshot struct {
	Arrivals    []VesselArrival `json:"arrivals"`
	GeneratedAt time.Time       `json:"generated_at"`
}
