package ports

import (
	"context"
	"fuel-delivery-service/internal/domain"
)

// Contract for a live truck position source driving in-transit deliveries.
type Tracker interface {
	// Begin tracking a truck from start towards dest (nil picks a default destination).
	// Any running simulation for the truck is replaced.
	StartTracking(ctx context.Context, truckID string, start domain.Coordinates, totalKm float64, dest *domain.Coordinates) error
	// Stop tracking; a no-op for unknown or stopped trucks.
	StopTracking(truckID string)
	IsTracking(truckID string) bool
}

// Read side of the tracker for dashboards.
type TrackingReader interface {
	// Ids of trucks with a running simulation, sorted.
	TrackedTrucks() []string
	TrackingInfo(truckID string) (domain.TrackedTruck, bool)
}
