package repositories

import (
	"context"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/ports"
	"sync"
)

type TankRepository struct {
	mu    sync.Mutex
	tanks collection[domain.Tank]
}

func NewTankRepository(store ports.ListStore) *TankRepository {
	return &TankRepository{tanks: collection[domain.Tank]{
		store: store,
		key:   KeyTanks,
		id:    func(t *domain.Tank) string { return t.ID },
	}}
}

func (r *TankRepository) GetTank(ctx context.Context, id string) (*domain.Tank, error) {
	return r.tanks.find(ctx, id)
}

func (r *TankRepository) SaveTank(ctx context.Context, tank *domain.Tank) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tanks.upsert(ctx, tank)
}
