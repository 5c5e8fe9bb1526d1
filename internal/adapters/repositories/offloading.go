package repositories

import (
	"context"
	"fmt"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/ports"
	"sync"
)

// Offloading records are written once per delivery.
type OffloadingRepository struct {
	mu      sync.Mutex
	records collection[domain.OffloadingRecord]
}

func NewOffloadingRepository(store ports.ListStore) *OffloadingRepository {
	return &OffloadingRepository{records: collection[domain.OffloadingRecord]{
		store: store,
		key:   KeyOffloadings,
		id:    func(o *domain.OffloadingRecord) string { return o.ID },
	}}
}

func (r *OffloadingRepository) GetOffloading(ctx context.Context, deliveryID string) (*domain.OffloadingRecord, error) {
	items, err := r.records.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range items {
		if rec.DeliveryID == deliveryID {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("offloading for delivery %q: %w", deliveryID, domain.ErrNotFound)
}

func (r *OffloadingRepository) CreateOffloading(ctx context.Context, record *domain.OffloadingRecord) error {
	if record == nil || record.ID == "" || record.DeliveryID == "" {
		return fmt.Errorf("create offloading: record needs id and delivery id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.records.load(ctx)
	if err != nil {
		return err
	}
	for _, rec := range items {
		if rec.DeliveryID == record.DeliveryID {
			return fmt.Errorf("create offloading for delivery %q: %w", record.DeliveryID, domain.ErrAlreadyRecorded)
		}
	}

	return r.records.save(ctx, append(items, record))
}
