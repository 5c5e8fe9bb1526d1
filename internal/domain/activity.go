package domain

import "time"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// User-facing message emitted for every accepted or rejected operation.
type Notification struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Append-only audit record, one per state transition.
type ActivityEntry struct {
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Action     string            `json:"action"`
	Details    string            `json:"details"`
	User       string            `json:"user"`
	Timestamp  time.Time         `json:"timestamp"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Position report produced by a telematics source for one truck.
type TickEvent struct {
	TruckID           string      `json:"truck_id"`
	Position          Coordinates `json:"position"`
	SpeedKmh          float64     `json:"speed_kmh"`
	DistanceCoveredKm float64     `json:"distance_covered_km"`
	TotalDistanceKm   float64     `json:"total_distance_km"`
	Completed         bool        `json:"completed"`
	At                time.Time   `json:"at"`
}
