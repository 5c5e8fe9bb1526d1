package ports

import (
	"context"
	"fuel-delivery-service/internal/domain"
)

type OrderRepository interface {
	GetOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error)
	ListOrders(ctx context.Context) ([]*domain.PurchaseOrder, error)
	SaveOrder(ctx context.Context, order *domain.PurchaseOrder) error
}

type DeliveryRepository interface {
	GetDelivery(ctx context.Context, id string) (*domain.Delivery, error)
	// Return the non-superseded delivery for an order.
	CurrentDelivery(ctx context.Context, orderID string) (*domain.Delivery, error)
	// Return every in-transit delivery carried by the truck.
	InTransitByTruck(ctx context.Context, truckID string) ([]*domain.Delivery, error)
	SaveDelivery(ctx context.Context, delivery *domain.Delivery) error
}

type FleetRepository interface {
	GetTruck(ctx context.Context, id string) (*domain.Truck, error)
	ListTrucks(ctx context.Context) ([]*domain.Truck, error)
	SaveTruck(ctx context.Context, truck *domain.Truck) error
	GetDriver(ctx context.Context, id string) (*domain.Driver, error)
	SaveDriver(ctx context.Context, driver *domain.Driver) error
}

type TankRepository interface {
	GetTank(ctx context.Context, id string) (*domain.Tank, error)
	SaveTank(ctx context.Context, tank *domain.Tank) error
}

type OffloadingRepository interface {
	// Return domain.ErrNotFound when no record exists for the delivery.
	GetOffloading(ctx context.Context, deliveryID string) (*domain.OffloadingRecord, error)
	// Insert a record; return domain.ErrAlreadyRecorded if one exists for the delivery.
	CreateOffloading(ctx context.Context, record *domain.OffloadingRecord) error
}

type ActivityLog interface {
	Append(ctx context.Context, entry domain.ActivityEntry) error
	List(ctx context.Context) ([]domain.ActivityEntry, error)
}
