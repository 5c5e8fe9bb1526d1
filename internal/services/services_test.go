package services

import (
	"context"
	"fmt"
	"fuel-delivery-service/internal/adapters/distance"
	"fuel-delivery-service/internal/adapters/notify"
	"fuel-delivery-service/internal/adapters/repositories"
	"fuel-delivery-service/internal/adapters/store"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/ports"
	"sync"
	"testing"
	"time"
)

type trackCall struct {
	truckID string
	start   domain.Coordinates
	totalKm float64
}

type fakeTracker struct {
	mu      sync.Mutex
	started []trackCall
	stopped []string
	active  map[string]bool
}

func newFakeTracker() *fakeTracker { return &fakeTracker{active: map[string]bool{}} }

func (f *fakeTracker) StartTracking(_ context.Context, truckID string, start domain.Coordinates, totalKm float64, _ *domain.Coordinates) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, trackCall{truckID: truckID, start: start, totalKm: totalKm})
	f.active[truckID] = true
	return nil
}

func (f *fakeTracker) StopTracking(truckID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, truckID)
	delete(f.active, truckID)
}

func (f *fakeTracker) IsTracking(truckID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active[truckID]
}

var baseTime = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type harness struct {
	deliveries   *DeliveryService
	offloading   *OffloadingService
	orders       *repositories.OrderRepository
	deliveryRepo *repositories.DeliveryRepository
	fleet        *repositories.FleetRepository
	tanks        *repositories.TankRepository
	activity     *repositories.ActivityLog
	notes        *notify.Recorder
	estimator    *distance.FixedEstimator
}

func newHarness(t *testing.T, tracker ports.Tracker) *harness {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()

	h := &harness{
		orders:       repositories.NewOrderRepository(s),
		deliveryRepo: repositories.NewDeliveryRepository(s),
		fleet:        repositories.NewFleetRepository(s),
		tanks:        repositories.NewTankRepository(s),
		activity:     repositories.NewActivityLog(s),
		notes:        &notify.Recorder{},
		estimator:    distance.NewFixedEstimator(100),
	}

	trucks := []*domain.Truck{
		{ID: "T1", PlateNumber: "LSR-482-XA", GPSCapable: true, GPSTagged: true, GPSDeviceID: "GPS-1"},
		{ID: "T2", PlateNumber: "KJA-119-BD", GPSCapable: true},
		{ID: "T3", PlateNumber: "APP-903-KT"},
	}
	for _, tr := range trucks {
		mustDo(t, h.fleet.SaveTruck(ctx, tr))
	}
	mustDo(t, h.fleet.SaveDriver(ctx, &domain.Driver{ID: "DR1", Name: "Chinedu", Available: true}))
	mustDo(t, h.fleet.SaveDriver(ctx, &domain.Driver{ID: "DR2", Name: "Tunde", Available: false}))
	for _, id := range []string{"O1", "O2"} {
		mustDo(t, h.orders.SaveOrder(ctx, &domain.PurchaseOrder{ID: id, FuelType: "PMS", VolumeLitres: 1000, Status: domain.OrderPending}))
	}
	mustDo(t, h.tanks.SaveTank(ctx, &domain.Tank{ID: "K1", Name: "PMS Tank 1", FuelType: "PMS", CapacityLitres: 5000, CurrentLitres: 1000}))
	mustDo(t, h.tanks.SaveTank(ctx, &domain.Tank{ID: "K2", Name: "AGO Tank 1", FuelType: "AGO", CapacityLitres: 5000}))

	var seq int
	var seqMu sync.Mutex
	newID := func() string {
		seqMu.Lock()
		defer seqMu.Unlock()
		seq++
		return fmt.Sprintf("ID%d", seq)
	}
	now := func() time.Time { return baseTime }

	h.deliveries = NewDeliveryService(DeliveryDeps{
		Orders:     h.orders,
		Deliveries: h.deliveryRepo,
		Fleet:      h.fleet,
		Activity:   h.activity,
		Notifier:   h.notes,
		Estimator:  h.estimator,
		Tracker:    tracker,
		Positions:  h.notes,
		Now:        now,
		NewID:      newID,
	})
	h.offloading = NewOffloadingService(OffloadingDeps{
		Orders:      h.orders,
		Deliveries:  h.deliveryRepo,
		Tanks:       h.tanks,
		Offloadings: repositories.NewOffloadingRepository(s),
		Activity:    h.activity,
		Notifier:    h.notes,
		Now:         now,
		NewID:       newID,
	})
	return h
}

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func (h *harness) lastActivity(t *testing.T) domain.ActivityEntry {
	t.Helper()
	entries, err := h.activity.List(context.Background())
	if err != nil || len(entries) == 0 {
		t.Fatalf("no activity entries (err %v)", err)
	}
	return entries[len(entries)-1]
}

func (h *harness) lastNotification(t *testing.T) domain.Notification {
	t.Helper()
	n, ok := h.notes.Last()
	if !ok {
		t.Fatalf("no notification sent")
	}
	return n
}

func (h *harness) orderStatus(t *testing.T, id string) domain.OrderStatus {
	t.Helper()
	o, err := h.orders.GetOrder(context.Background(), id)
	if err != nil {
		t.Fatalf("get order %s: %v", id, err)
	}
	return o.Status
}

// deliver runs an order through assign, start, and complete.
func (h *harness) deliver(t *testing.T, orderID, truckID string) *domain.Delivery {
	t.Helper()
	ctx := context.Background()
	if _, err := h.deliveries.Assign(ctx, orderID, "DR1", truckID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := h.deliveries.Start(ctx, orderID); err != nil {
		t.Fatalf("start: %v", err)
	}
	d, err := h.deliveries.Complete(ctx, orderID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	return d
}
