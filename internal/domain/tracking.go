package domain

import "time"

// TrackedTruck is a snapshot of one truck's simulated journey.
type TrackedTruck struct {
	TruckID           string      `json:"truck_id"`
	StartedAt         time.Time   `json:"started_at"`
	TotalDistanceKm   float64     `json:"total_distance_km"`
	DistanceCoveredKm float64     `json:"distance_covered_km"`
	Position          Coordinates `json:"position"`
	Destination       Coordinates `json:"destination"`
	SpeedKmh          float64     `json:"speed_kmh"`
	Active            bool        `json:"active"`
}

// Progress returns the covered fraction of the journey.
func (t TrackedTruck) Progress() float64 {
	if t.TotalDistanceKm <= 0 {
		return 0
	}
	return t.DistanceCoveredKm / t.TotalDistanceKm
}
