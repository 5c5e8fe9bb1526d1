package repositories

import (
	"context"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/ports"
	"sync"
)

// Trucks and drivers.
type FleetRepository struct {
	mu      sync.Mutex
	trucks  collection[domain.Truck]
	drivers collection[domain.Driver]
}

func NewFleetRepository(store ports.ListStore) *FleetRepository {
	return &FleetRepository{
		trucks: collection[domain.Truck]{
			store: store,
			key:   KeyTrucks,
			id:    func(t *domain.Truck) string { return t.ID },
		},
		drivers: collection[domain.Driver]{
			store: store,
			key:   KeyDrivers,
			id:    func(d *domain.Driver) string { return d.ID },
		},
	}
}

func (r *FleetRepository) GetTruck(ctx context.Context, id string) (*domain.Truck, error) {
	return r.trucks.find(ctx, id)
}

func (r *FleetRepository) ListTrucks(ctx context.Context) ([]*domain.Truck, error) {
	return r.trucks.load(ctx)
}

func (r *FleetRepository) SaveTruck(ctx context.Context, truck *domain.Truck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trucks.upsert(ctx, truck)
}

func (r *FleetRepository) GetDriver(ctx context.Context, id string) (*domain.Driver, error) {
	return r.drivers.find(ctx, id)
}

func (r *FleetRepository) SaveDriver(ctx context.Context, driver *domain.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drivers.upsert(ctx, driver)
}
