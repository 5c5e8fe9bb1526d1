package domain

import (
	"fmt"
	"time"
)

// Fuel tanker truck with optional GPS telematics.
type Truck struct {
	ID           string       `json:"id"`
	PlateNumber  string       `json:"plate_number"`
	GPSCapable   bool         `json:"gps_capable"`
	GPSTagged    bool         `json:"gps_tagged"`
	GPSDeviceID  string       `json:"gps_device_id,omitempty"`
	LastPosition *Coordinates `json:"last_position,omitempty"`
	LastSpeedKmh float64      `json:"last_speed_kmh"`
	LastUpdate   *time.Time   `json:"last_update,omitempty"`
}

// Tag attaches a GPS device to the truck.
func (t *Truck) Tag(deviceID string) error {
	if !t.GPSCapable {
		return fmt.Errorf("tag truck %s: %w: truck has no GPS capability", t.ID, ErrPrecondition)
	}
	if deviceID == "" {
		return fmt.Errorf("tag truck %s: %w: device id must not be empty", t.ID, ErrPrecondition)
	}
	t.GPSTagged = true
	t.GPSDeviceID = deviceID
	return nil
}

// ReadyForTransit enforces the GPS tagging policy for departing trucks.
func (t *Truck) ReadyForTransit() error {
	if t.GPSCapable && !t.GPSTagged {
		return fmt.Errorf("truck %s: %w", t.ID, ErrGPSTagRequired)
	}
	return nil
}

// Tracked reports whether departures of this truck should start a GPS simulation.
func (t *Truck) Tracked() bool { return t.GPSTagged }

// Position returns the last known position, or DefaultPosition when unset.
func (t *Truck) Position() Coordinates {
	if t.LastPosition == nil {
		return DefaultPosition
	}
	return *t.LastPosition
}

// RecordPosition stores the latest telemetry reading.
func (t *Truck) RecordPosition(at time.Time, pos Coordinates, speedKmh float64) {
	t.LastPosition = &pos
	t.LastSpeedKmh = speedKmh
	t.LastUpdate = &at
}

type Driver struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Available bool   `json:"available"`
}
