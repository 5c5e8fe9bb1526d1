package repositories

import (
	"context"
	"fmt"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/ports"
	"sync"
)

// Deliveries are never deleted; reassignment marks the old one superseded.
type DeliveryRepository struct {
	mu         sync.Mutex
	deliveries collection[domain.Delivery]
}

func NewDeliveryRepository(store ports.ListStore) *DeliveryRepository {
	return &DeliveryRepository{deliveries: collection[domain.Delivery]{
		store: store,
		key:   KeyDeliveries,
		id:    func(d *domain.Delivery) string { return d.ID },
	}}
}

func (r *DeliveryRepository) GetDelivery(ctx context.Context, id string) (*domain.Delivery, error) {
	return r.deliveries.find(ctx, id)
}

func (r *DeliveryRepository) CurrentDelivery(ctx context.Context, orderID string) (*domain.Delivery, error) {
	items, err := r.deliveries.load(ctx)
	if err != nil {
		return nil, err
	}

	// latest non-superseded wins if older data holds more than one
	var current *domain.Delivery
	for _, d := range items {
		if d.OrderID == orderID && d.Current() {
			current = d
		}
	}
	if current == nil {
		return nil, fmt.Errorf("delivery for order %q: %w", orderID, domain.ErrNotFound)
	}
	return current, nil
}

func (r *DeliveryRepository) InTransitByTruck(ctx context.Context, truckID string) ([]*domain.Delivery, error) {
	items, err := r.deliveries.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Delivery, 0, 1)
	for _, d := range items {
		if d.TruckID == truckID && d.Current() && d.Status == domain.DeliveryInTransit {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *DeliveryRepository) SaveDelivery(ctx context.Context, delivery *domain.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deliveries.upsert(ctx, delivery)
}
