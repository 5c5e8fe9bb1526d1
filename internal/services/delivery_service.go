package services

import (
	"context"
	"errors"
	"fmt"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/platform/obs"
	"fuel-delivery-service/internal/ports"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Planning speed used for the departure ETA before any GPS report arrives.
const AssumedSpeedKmh = 50.0

type DeliveryDeps struct {
	Orders     ports.OrderRepository
	Deliveries ports.DeliveryRepository
	Fleet      ports.FleetRepository
	Activity   ports.ActivityLog
	Notifier   ports.Notifier
	Estimator  ports.DistanceEstimator
	// Optional. Nil disables live tracking.
	Tracker ports.Tracker
	// Optional. Receives every applied GPS tick.
	Positions ports.PositionPublisher
	Now       func() time.Time
	NewID     func() string
}

// DeliveryService owns the delivery state machine:
// pending -> in_transit -> delivered, never backwards.
type DeliveryService struct {
	// serializes read-modify-write across repositories
	mu sync.Mutex

	orders     ports.OrderRepository
	deliveries ports.DeliveryRepository
	fleet      ports.FleetRepository
	estimator  ports.DistanceEstimator
	tracker    ports.Tracker
	positions  ports.PositionPublisher
	effects    sideEffects

	now   func() time.Time
	newID func() string
}

func NewDeliveryService(deps DeliveryDeps) *DeliveryService {
	s := &DeliveryService{
		orders:     deps.Orders,
		deliveries: deps.Deliveries,
		fleet:      deps.Fleet,
		estimator:  deps.Estimator,
		tracker:    deps.Tracker,
		positions:  deps.Positions,
		effects:    sideEffects{activity: deps.Activity, notifier: deps.Notifier},
		now:        deps.Now,
		newID:      deps.NewID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Assign creates a pending delivery for the order, superseding a pending one.
func (s *DeliveryService) Assign(ctx context.Context, orderID, driverID, truckID string) (_ *domain.Delivery, err error) {
	defer obs.Time(ctx, "deliveries.Assign")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	const title = "Assignment failed"

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, s.effects.reject(ctx, title, fmt.Errorf("assign: %w", err))
	}
	driver, err := s.fleet.GetDriver(ctx, driverID)
	if err != nil {
		return nil, s.effects.reject(ctx, title, fmt.Errorf("assign: %w", err))
	}
	truck, err := s.fleet.GetTruck(ctx, truckID)
	if err != nil {
		return nil, s.effects.reject(ctx, title, fmt.Errorf("assign: %w", err))
	}
	if !driver.Available {
		return nil, s.effects.reject(ctx, title,
			fmt.Errorf("assign: %w: driver %s is not available", domain.ErrPrecondition, driver.ID))
	}

	busy, err := s.deliveries.InTransitByTruck(ctx, truck.ID)
	if err != nil {
		return nil, fmt.Errorf("assign: %w", err)
	}
	for _, d := range busy {
		if d.OrderID != order.ID {
			return nil, s.effects.reject(ctx, title,
				fmt.Errorf("assign: %w: truck %s is in transit for order %s", domain.ErrPrecondition, truck.ID, d.OrderID))
		}
	}

	prev, err := s.deliveries.CurrentDelivery(ctx, order.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		prev = nil
	case err != nil:
		return nil, fmt.Errorf("assign: %w", err)
	case prev.Status != domain.DeliveryPending:
		return nil, s.effects.reject(ctx, title,
			fmt.Errorf("assign order %s: %w: delivery is already %s", order.ID, domain.ErrInvalidTransition, prev.Status))
	}

	now := s.now()
	d := &domain.Delivery{
		ID:          s.newID(),
		OrderID:     order.ID,
		DriverID:    driver.ID,
		TruckID:     truck.ID,
		Status:      domain.DeliveryPending,
		GPSTagged:   truck.GPSTagged,
		GPSDeviceID: truck.GPSDeviceID,
		CreatedAt:   now,
	}

	if prev != nil {
		prev.SupersededBy = d.ID
		if err := s.deliveries.SaveDelivery(ctx, prev); err != nil {
			return nil, fmt.Errorf("assign: supersede %s: %w", prev.ID, err)
		}
	}
	if err := s.deliveries.SaveDelivery(ctx, d); err != nil {
		return nil, fmt.Errorf("assign: %w", err)
	}

	order.SyncStatus(d.Status)
	if err := s.orders.SaveOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("assign: %w", err)
	}

	meta := map[string]string{"order_id": order.ID, "driver_id": driver.ID, "truck_id": truck.ID}
	if prev != nil {
		meta["supersedes"] = prev.ID
	}
	s.effects.record(ctx, "delivery", d.ID, "assigned",
		fmt.Sprintf("Order %s assigned to %s with truck %s", orderLabel(order), driver.Name, truckLabel(truck)), now, meta)
	s.effects.notify(ctx, "Delivery assigned",
		fmt.Sprintf("Order %s assigned to driver %s", orderLabel(order), driver.Name), domain.SeveritySuccess)

	return d, nil
}

// Start dispatches the order's pending delivery and begins GPS tracking
// for tagged trucks.
func (s *DeliveryService) Start(ctx context.Context, orderID string) (_ *domain.Delivery, err error) {
	defer obs.Time(ctx, "deliveries.Start")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	const title = "Start failed"

	d, err := s.deliveries.CurrentDelivery(ctx, orderID)
	if err != nil {
		return nil, s.effects.reject(ctx, title, fmt.Errorf("start: %w", err))
	}
	if !d.Status.CanTransitionTo(domain.DeliveryInTransit) {
		return nil, s.effects.reject(ctx, title,
			fmt.Errorf("start delivery %s: %w: %s -> %s", d.ID, domain.ErrInvalidTransition, d.Status, domain.DeliveryInTransit))
	}
	if d.DriverID == "" || d.TruckID == "" {
		return nil, s.effects.reject(ctx, title,
			fmt.Errorf("start delivery %s: %w: driver and truck must be assigned", d.ID, domain.ErrPrecondition))
	}

	truck, err := s.fleet.GetTruck(ctx, d.TruckID)
	if err != nil {
		return nil, s.effects.reject(ctx, title, fmt.Errorf("start: %w", err))
	}
	if err := truck.ReadyForTransit(); err != nil {
		return nil, s.effects.reject(ctx, title, fmt.Errorf("start delivery %s: %w", d.ID, err))
	}

	totalKm, err := s.estimator.EstimateKm(ctx, d)
	if err != nil {
		return nil, s.effects.reject(ctx, title, fmt.Errorf("start delivery %s: estimate distance: %w", d.ID, err))
	}

	now := s.now()
	if err := d.Start(now, totalKm); err != nil {
		return nil, s.effects.reject(ctx, title, err)
	}
	eta := now.Add(time.Duration(totalKm / AssumedSpeedKmh * float64(time.Hour)))
	d.ExpectedArrival = &eta
	d.GPSTagged = truck.GPSTagged
	d.GPSDeviceID = truck.GPSDeviceID

	if err := s.syncOrder(ctx, d); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	if err := s.deliveries.SaveDelivery(ctx, d); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	if truck.Tracked() && s.tracker != nil {
		if err := s.tracker.StartTracking(ctx, truck.ID, truck.Position(), totalKm, nil); err != nil {
			// the delivery stays in transit; progress then only changes on Complete
			slog.WarnContext(ctx, "gps tracking not started", "truck_id", truck.ID, "delivery_id", d.ID, "err", err)
		}
	}

	s.effects.record(ctx, "delivery", d.ID, "started",
		fmt.Sprintf("Truck %s departed for %.0f km", truckLabel(truck), totalKm), now,
		map[string]string{"order_id": d.OrderID, "truck_id": truck.ID})
	s.effects.notify(ctx, "Delivery started",
		fmt.Sprintf("Truck %s is in transit, ETA %s", truckLabel(truck), eta.Format(time.Kitchen)), domain.SeverityInfo)

	return d, nil
}

// Complete marks the in-transit delivery as delivered and stops tracking.
func (s *DeliveryService) Complete(ctx context.Context, orderID string) (_ *domain.Delivery, err error) {
	defer obs.Time(ctx, "deliveries.Complete")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	const title = "Completion failed"

	d, err := s.deliveries.CurrentDelivery(ctx, orderID)
	if err != nil {
		return nil, s.effects.reject(ctx, title, fmt.Errorf("complete: %w", err))
	}

	now := s.now()
	if err := d.Complete(now); err != nil {
		return nil, s.effects.reject(ctx, title, err)
	}
	// order before delivery: offloading gates on the delivery status
	if err := s.syncOrder(ctx, d); err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}
	if err := s.deliveries.SaveDelivery(ctx, d); err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	if s.tracker != nil && d.TruckID != "" {
		s.tracker.StopTracking(d.TruckID)
	}

	s.effects.record(ctx, "delivery", d.ID, "completed",
		fmt.Sprintf("Delivered after %.0f km", d.DistanceCoveredKm), now,
		map[string]string{"order_id": d.OrderID, "truck_id": d.TruckID})
	s.effects.notify(ctx, "Delivery completed",
		fmt.Sprintf("Order %s has arrived at the station", d.OrderID), domain.SeveritySuccess)

	return d, nil
}

// ApplyGPSTick records the truck's latest position and advances its
// in-transit deliveries.
func (s *DeliveryService) ApplyGPSTick(ctx context.Context, tick domain.TickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	truck, err := s.fleet.GetTruck(ctx, tick.TruckID)
	if err != nil {
		return fmt.Errorf("apply gps tick: %w", err)
	}

	at := tick.At
	if at.IsZero() {
		at = s.now()
	}

	truck.RecordPosition(at, tick.Position, tick.SpeedKmh)
	if err := s.fleet.SaveTruck(ctx, truck); err != nil {
		return fmt.Errorf("apply gps tick: %w", err)
	}

	active, err := s.deliveries.InTransitByTruck(ctx, truck.ID)
	if err != nil {
		return fmt.Errorf("apply gps tick: %w", err)
	}
	for _, d := range active {
		if !d.ApplyProgress(at, tick.SpeedKmh) {
			continue
		}
		if err := s.deliveries.SaveDelivery(ctx, d); err != nil {
			return fmt.Errorf("apply gps tick: %w", err)
		}
	}
	return nil
}

// HandleTick applies a tick and forwards it to the position feed. Errors are logged.
func (s *DeliveryService) HandleTick(ctx context.Context, tick domain.TickEvent) {
	if err := s.ApplyGPSTick(ctx, tick); err != nil {
		slog.WarnContext(ctx, "gps tick not applied", "truck_id", tick.TruckID, "err", err)
		return
	}
	if s.positions != nil {
		if err := s.positions.PublishPosition(ctx, tick); err != nil {
			slog.WarnContext(ctx, "gps position not published", "truck_id", tick.TruckID, "err", err)
		}
	}
}

// ConsumeTicks drains ticks until ctx is done or the channel closes.
func (s *DeliveryService) ConsumeTicks(ctx context.Context, ticks <-chan domain.TickEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			s.HandleTick(ctx, tick)
		}
	}
}

// TagTruck attaches a GPS device to a GPS-capable truck.
func (s *DeliveryService) TagTruck(ctx context.Context, truckID, deviceID string) (_ *domain.Truck, err error) {
	defer obs.Time(ctx, "deliveries.TagTruck")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	const title = "GPS tagging failed"

	truck, err := s.fleet.GetTruck(ctx, truckID)
	if err != nil {
		return nil, s.effects.reject(ctx, title, fmt.Errorf("tag truck: %w", err))
	}
	if err := truck.Tag(deviceID); err != nil {
		return nil, s.effects.reject(ctx, title, err)
	}
	if err := s.fleet.SaveTruck(ctx, truck); err != nil {
		return nil, fmt.Errorf("tag truck: %w", err)
	}

	s.effects.record(ctx, "truck", truck.ID, "gps_tagged",
		fmt.Sprintf("Truck %s tagged with device %s", truckLabel(truck), deviceID), s.now(),
		map[string]string{"device_id": deviceID})
	s.effects.notify(ctx, "Truck tagged",
		fmt.Sprintf("Truck %s is now GPS tracked", truckLabel(truck)), domain.SeveritySuccess)

	return truck, nil
}

// Delivery returns the order's current delivery.
func (s *DeliveryService) Delivery(ctx context.Context, orderID string) (*domain.Delivery, error) {
	d, err := s.deliveries.CurrentDelivery(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return d, nil
}

func (s *DeliveryService) syncOrder(ctx context.Context, d *domain.Delivery) error {
	order, err := s.orders.GetOrder(ctx, d.OrderID)
	if err != nil {
		return err
	}
	order.SyncStatus(d.Status)
	return s.orders.SaveOrder(ctx, order)
}

func orderLabel(o *domain.PurchaseOrder) string {
	if o.Number != "" {
		return o.Number
	}
	return o.ID
}

func truckLabel(t *domain.Truck) string {
	if t.PlateNumber != "" {
		return t.PlateNumber
	}
	return t.ID
}
