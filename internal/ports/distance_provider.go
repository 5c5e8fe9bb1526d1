package ports

import (
	"context"
	"fuel-delivery-service/internal/domain"
)

// Contract for deciding how long a delivery leg is before departure.
type DistanceEstimator interface {
	// Return the total trip distance in kilometres for the delivery.
	EstimateKm(ctx context.Context, delivery *domain.Delivery) (float64, error)
}
