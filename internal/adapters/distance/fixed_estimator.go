package distance

import (
	"context"
	"fmt"
	"fuel-delivery-service/internal/domain"
)

// FixedEstimator returns preset distances keyed by order id, falling back to Default.
type FixedEstimator struct {
	ByOrder map[string]float64
	Default float64
}

func NewFixedEstimator(defaultKm float64) *FixedEstimator {
	return &FixedEstimator{ByOrder: map[string]float64{}, Default: defaultKm}
}

func (f *FixedEstimator) EstimateKm(ctx context.Context, d *domain.Delivery) (float64, error) {
	if km, ok := f.ByOrder[d.OrderID]; ok {
		return km, nil
	}
	if f.Default <= 0 {
		return 0, fmt.Errorf("missing distance for order %q", d.OrderID)
	}
	return f.Default, nil
}
