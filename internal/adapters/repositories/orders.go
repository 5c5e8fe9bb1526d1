package repositories

import (
	"context"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/ports"
	"sync"
)

// Purchase orders stored as one list.
type OrderRepository struct {
	mu     sync.Mutex
	orders collection[domain.PurchaseOrder]
}

func NewOrderRepository(store ports.ListStore) *OrderRepository {
	return &OrderRepository{orders: collection[domain.PurchaseOrder]{
		store: store,
		key:   KeyOrders,
		id:    func(o *domain.PurchaseOrder) string { return o.ID },
	}}
}

func (r *OrderRepository) GetOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	return r.orders.find(ctx, id)
}

func (r *OrderRepository) ListOrders(ctx context.Context) ([]*domain.PurchaseOrder, error) {
	return r.orders.load(ctx)
}

func (r *OrderRepository) SaveOrder(ctx context.Context, order *domain.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders.upsert(ctx, order)
}
