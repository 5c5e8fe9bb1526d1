package dto

import "fuel-delivery-service/internal/domain"

type TrackingResponse struct {
	Trucks []domain.TrackedTruck `json:"trucks"`
}

type ActivityResponse struct {
	Entries []domain.ActivityEntry `json:"entries"`
}
