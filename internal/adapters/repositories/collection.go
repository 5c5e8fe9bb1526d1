package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/ports"
)

// List keys used in the backing store.
const (
	KeyOrders      = "orders"
	KeyDeliveries  = "deliveries"
	KeyTrucks      = "trucks"
	KeyDrivers     = "drivers"
	KeyTanks       = "tanks"
	KeyOffloadings = "offloading_records"
	KeyActivity    = "activity_log"
)

// collection maps one store list onto typed entities.
type collection[T any] struct {
	store ports.ListStore
	key   string
	id    func(*T) string
}

func (c collection[T]) load(ctx context.Context) ([]*T, error) {
	if c.store == nil {
		return nil, errors.New("list repository: store is nil")
	}

	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}

	items := make([]*T, 0, len(raw))
	for i, r := range raw {
		item := new(T)
		if err := json.Unmarshal(r, item); err != nil {
			return nil, fmt.Errorf("load %s: decode item #%d: %w", c.key, i+1, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (c collection[T]) save(ctx context.Context, items []*T) error {
	raw := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("save %s: encode %q: %w", c.key, c.id(item), err)
		}
		raw = append(raw, b)
	}

	if err := c.store.Set(ctx, c.key, raw); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	return nil
}

func (c collection[T]) find(ctx context.Context, id string) (*T, error) {
	items, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if c.id(item) == id {
			return item, nil
		}
	}
	return nil, fmt.Errorf("%s %q: %w", c.key, id, domain.ErrNotFound)
}

// upsert replaces the item with the same id or appends it. Callers serialize.
func (c collection[T]) upsert(ctx context.Context, item *T) error {
	if item == nil {
		return fmt.Errorf("save %s: item is nil", c.key)
	}
	if c.id(item) == "" {
		return fmt.Errorf("save %s: id must not be empty", c.key)
	}

	items, err := c.load(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range items {
		if c.id(existing) == c.id(item) {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}
	return c.save(ctx, items)
}
