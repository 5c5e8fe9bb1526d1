package domain

import (
	"fmt"
	"math"
	"time"
)

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryInTransit DeliveryStatus = "in_transit"
	DeliveryDelivered DeliveryStatus = "delivered"
)

func (s DeliveryStatus) String() string { return string(s) }

func (s DeliveryStatus) rank() int {
	switch s {
	case DeliveryPending:
		return 0
	case DeliveryInTransit:
		return 1
	case DeliveryDelivered:
		return 2
	default:
		return -1
	}
}

// CanTransitionTo reports whether next is the single forward step from s.
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	return s.rank() >= 0 && next.rank() == s.rank()+1
}

// Represents one truck/driver transport leg for a purchase order.
// A Delivery only moves forward through its statuses and is never deleted;
// reassignment creates a new Delivery and links the old one via SupersededBy.
type Delivery struct {
	ID                string         `json:"id"`
	OrderID           string         `json:"order_id"`
	DriverID          string         `json:"driver_id,omitempty"`
	TruckID           string         `json:"truck_id,omitempty"`
	Status            DeliveryStatus `json:"status"`
	DepartedAt        *time.Time     `json:"departed_at,omitempty"`
	ArrivedAt         *time.Time     `json:"arrived_at,omitempty"`
	ExpectedArrival   *time.Time     `json:"expected_arrival,omitempty"`
	DistanceCoveredKm float64        `json:"distance_covered_km"`
	TotalDistanceKm   float64        `json:"total_distance_km"`
	GPSTagged         bool           `json:"gps_tagged"`
	GPSDeviceID       string         `json:"gps_device_id,omitempty"`
	SupersededBy      string         `json:"superseded_by,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// Current reports whether the delivery has not been replaced by a reassignment.
func (d *Delivery) Current() bool { return d.SupersededBy == "" }

// Start moves a pending delivery into transit over totalKm.
func (d *Delivery) Start(now time.Time, totalKm float64) error {
	if !d.Status.CanTransitionTo(DeliveryInTransit) {
		return fmt.Errorf("start delivery %s: %w: %s -> %s", d.ID, ErrInvalidTransition, d.Status, DeliveryInTransit)
	}
	if d.DriverID == "" || d.TruckID == "" {
		return fmt.Errorf("start delivery %s: %w: driver and truck must be assigned", d.ID, ErrPrecondition)
	}
	if totalKm <= 0 || math.IsNaN(totalKm) || math.IsInf(totalKm, 0) {
		return fmt.Errorf("start delivery %s: %w: total distance %v", d.ID, ErrInvalidDistance, totalKm)
	}

	d.Status = DeliveryInTransit
	d.DepartedAt = &now
	d.DistanceCoveredKm = 0
	d.TotalDistanceKm = totalKm
	return nil
}

// Complete marks an in-transit delivery as delivered and closes out its distance.
func (d *Delivery) Complete(now time.Time) error {
	if !d.Status.CanTransitionTo(DeliveryDelivered) {
		return fmt.Errorf("complete delivery %s: %w: %s -> %s", d.ID, ErrInvalidTransition, d.Status, DeliveryDelivered)
	}

	d.Status = DeliveryDelivered
	d.ArrivedAt = &now
	d.DistanceCoveredKm = d.TotalDistanceKm
	return nil
}

// Minimum speed used for ETA estimation so a stopped truck does not yield an infinite ETA.
const minETASpeedKmh = 10.0

// ApplyProgress advances an in-transit delivery by one GPS report.
// Distance grows by speed*0.01 km and never exceeds the total.
func (d *Delivery) ApplyProgress(now time.Time, speedKmh float64) bool {
	if d.Status != DeliveryInTransit {
		return false
	}
	if speedKmh < 0 || math.IsNaN(speedKmh) {
		speedKmh = 0
	}

	d.DistanceCoveredKm = math.Min(d.DistanceCoveredKm+speedKmh*0.01, d.TotalDistanceKm)

	remaining := d.TotalDistanceKm - d.DistanceCoveredKm
	hours := remaining / math.Max(speedKmh, minETASpeedKmh)
	eta := now.Add(time.Duration(hours * float64(time.Hour)))
	d.ExpectedArrival = &eta
	return true
}
