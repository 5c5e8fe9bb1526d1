package dto

import (
	"fuel-delivery-service/internal/domain"
	"time"
)

type AssignRequest struct {
	DriverID string `json:"driver_id"`
	TruckID  string `json:"truck_id"`
}

type DeliveryResponse struct {
	ID                string     `json:"id"`
	OrderID           string     `json:"order_id"`
	DriverID          string     `json:"driver_id,omitempty"`
	TruckID           string     `json:"truck_id,omitempty"`
	Status            string     `json:"status"`
	DepartedAt        *time.Time `json:"departed_at,omitempty"`
	ArrivedAt         *time.Time `json:"arrived_at,omitempty"`
	ExpectedArrival   *time.Time `json:"expected_arrival,omitempty"`
	DistanceCoveredKm float64    `json:"distance_covered_km"`
	TotalDistanceKm   float64    `json:"total_distance_km"`
	ProgressPercent   float64    `json:"progress_percent"`
	GPSTagged         bool       `json:"gps_tagged"`
	GPSDeviceID       string     `json:"gps_device_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func NewDeliveryResponse(d *domain.Delivery) DeliveryResponse {
	progress := 0.0
	if d.TotalDistanceKm > 0 {
		progress = d.DistanceCoveredKm / d.TotalDistanceKm * 100
	}
	return DeliveryResponse{
		ID:                d.ID,
		OrderID:           d.OrderID,
		DriverID:          d.DriverID,
		TruckID:           d.TruckID,
		Status:            string(d.Status),
		DepartedAt:        d.DepartedAt,
		ArrivedAt:         d.ArrivedAt,
		ExpectedArrival:   d.ExpectedArrival,
		DistanceCoveredKm: d.DistanceCoveredKm,
		TotalDistanceKm:   d.TotalDistanceKm,
		ProgressPercent:   progress,
		GPSTagged:         d.GPSTagged,
		GPSDeviceID:       d.GPSDeviceID,
		CreatedAt:         d.CreatedAt,
	}
}

type TagTruckRequest struct {
	DeviceID string `json:"device_id"`
}

type TruckResponse struct {
	ID           string              `json:"id"`
	PlateNumber  string              `json:"plate_number"`
	GPSCapable   bool                `json:"gps_capable"`
	GPSTagged    bool                `json:"gps_tagged"`
	GPSDeviceID  string              `json:"gps_device_id,omitempty"`
	LastPosition *domain.Coordinates `json:"last_position,omitempty"`
}

func NewTruckResponse(t *domain.Truck) TruckResponse {
	return TruckResponse{
		ID:           t.ID,
		PlateNumber:  t.PlateNumber,
		GPSCapable:   t.GPSCapable,
		GPSTagged:    t.GPSTagged,
		GPSDeviceID:  t.GPSDeviceID,
		LastPosition: t.LastPosition,
	}
}
