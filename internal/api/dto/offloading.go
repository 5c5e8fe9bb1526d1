package dto

import (
	"fuel-delivery-service/internal/domain"
	"time"
)

type OffloadRequest struct {
	TankID          string  `json:"tank_id"`
	LoadedVolume    float64 `json:"loaded_volume"`
	DeliveredVolume float64 `json:"delivered_volume"`
	MeasuredBy      string  `json:"measured_by"`
	MeasuredByRole  string  `json:"measured_by_role"`
}

type OffloadingResponse struct {
	ID                 string    `json:"id"`
	DeliveryID         string    `json:"delivery_id"`
	OrderID            string    `json:"order_id"`
	TankID             string    `json:"tank_id"`
	LoadedVolume       float64   `json:"loaded_volume"`
	DeliveredVolume    float64   `json:"delivered_volume"`
	DiscrepancyPercent float64   `json:"discrepancy_percent"`
	DiscrepancyFlagged bool      `json:"discrepancy_flagged"`
	Status             string    `json:"status"`
	MeasuredBy         string    `json:"measured_by,omitempty"`
	RecordedAt         time.Time `json:"recorded_at"`
}

func NewOffloadingResponse(r *domain.OffloadingRecord) OffloadingResponse {
	return OffloadingResponse{
		ID:                 r.ID,
		DeliveryID:         r.DeliveryID,
		OrderID:            r.OrderID,
		TankID:             r.TankID,
		LoadedVolume:       r.LoadedVolume,
		DeliveredVolume:    r.DeliveredVolume,
		DiscrepancyPercent: r.DiscrepancyPercent,
		DiscrepancyFlagged: r.DiscrepancyFlagged,
		Status:             string(r.Status),
		MeasuredBy:         r.MeasuredBy,
		RecordedAt:         r.RecordedAt,
	}
}
