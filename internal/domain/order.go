package domain

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderInTransit OrderStatus = "in_transit"
	OrderDelivered OrderStatus = "delivered"
	OrderOffloaded OrderStatus = "offloaded"
)

// Purchase order for a fuel load from a supplier depot.
type PurchaseOrder struct {
	ID           string      `json:"id"`
	Number       string      `json:"number"`
	Supplier     string      `json:"supplier"`
	FuelType     string      `json:"fuel_type"`
	VolumeLitres float64     `json:"volume_litres"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

// SyncStatus mirrors the delivery lifecycle onto the order.
// An offloaded order keeps its status.
func (o *PurchaseOrder) SyncStatus(s DeliveryStatus) {
	if o.Status == OrderOffloaded {
		return
	}
	switch s {
	case DeliveryPending:
		o.Status = OrderPending
	case DeliveryInTransit:
		o.Status = OrderInTransit
	case DeliveryDelivered:
		o.Status = OrderDelivered
	}
}

// Storage tank at the station.
type Tank struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	FuelType       string  `json:"fuel_type"`
	CapacityLitres float64 `json:"capacity_litres"`
	CurrentLitres  float64 `json:"current_litres"`
}

// Free returns the remaining headroom in litres.
func (t *Tank) Free() float64 { return t.CapacityLitres - t.CurrentLitres }
