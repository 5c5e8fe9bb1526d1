package services

import (
	"context"
	"errors"
	"fuel-delivery-service/internal/domain"
	"math"
	"testing"
	"time"
)

func TestAssignCreatesPendingDelivery(t *testing.T) {
	h := newHarness(t, newFakeTracker())
	ctx := WithActor(context.Background(), "dispatcher@station")

	d, err := h.deliveries.Assign(ctx, "O1", "DR1", "T1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Status != domain.DeliveryPending {
		t.Fatalf("status = %s, want pending", d.Status)
	}
	if !d.GPSTagged || d.GPSDeviceID != "GPS-1" {
		t.Fatalf("gps tag not copied from truck: %+v", d)
	}
	if !d.CreatedAt.Equal(baseTime) {
		t.Fatalf("CreatedAt = %v, want %v", d.CreatedAt, baseTime)
	}

	entry := h.lastActivity(t)
	if entry.Action != "assigned" || entry.EntityID != d.ID || entry.User != "dispatcher@station" {
		t.Fatalf("activity = %+v", entry)
	}
	if n := h.lastNotification(t); n.Severity != domain.SeveritySuccess {
		t.Fatalf("notification severity = %s, want success", n.Severity)
	}
	if got := h.orderStatus(t, "O1"); got != domain.OrderPending {
		t.Fatalf("order status = %s, want pending", got)
	}
}

func TestAssignRejectsUnknownEntities(t *testing.T) {
	h := newHarness(t, newFakeTracker())
	ctx := context.Background()

	cases := []struct{ order, driver, truck string }{
		{"missing", "DR1", "T1"},
		{"O1", "missing", "T1"},
		{"O1", "DR1", "missing"},
	}
	for _, c := range cases {
		_, err := h.deliveries.Assign(ctx, c.order, c.driver, c.truck)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Assign(%s, %s, %s) err = %v, want ErrNotFound", c.order, c.driver, c.truck, err)
		}
		if n := h.lastNotification(t); n.Severity != domain.SeverityError {
			t.Fatalf("rejection severity = %s, want error", n.Severity)
		}
	}

	if _, err := h.deliveries.Assign(ctx, "O1", "DR2", "T1"); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("unavailable driver: err = %v, want ErrPrecondition", err)
	}
	if _, err := h.deliveries.Delivery(ctx, "O1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("rejected assignment left a delivery behind: %v", err)
	}
}

func TestAssignSupersedesPendingDelivery(t *testing.T) {
	h := newHarness(t, newFakeTracker())
	ctx := context.Background()

	first, err := h.deliveries.Assign(ctx, "O1", "DR1", "T1")
	mustDo(t, err)
	second, err := h.deliveries.Assign(ctx, "O1", "DR1", "T3")
	mustDo(t, err)

	cur, err := h.deliveries.Delivery(ctx, "O1")
	mustDo(t, err)
	if cur.ID != second.ID || cur.TruckID != "T3" {
		t.Fatalf("current delivery = %+v, want the reassignment", cur)
	}

	old, err := h.deliveryRepo.GetDelivery(ctx, first.ID)
	mustDo(t, err)
	if old.SupersededBy != second.ID {
		t.Fatalf("old delivery SupersededBy = %q, want %q", old.SupersededBy, second.ID)
	}
	if old.Status != domain.DeliveryPending {
		t.Fatalf("superseded delivery status changed to %s", old.Status)
	}
}

func TestAssignRejectedOnceInTransit(t *testing.T) {
	h := newHarness(t, newFakeTracker())
	ctx := context.Background()

	_, err := h.deliveries.Assign(ctx, "O1", "DR1", "T1")
	mustDo(t, err)
	_, err = h.deliveries.Start(ctx, "O1")
	mustDo(t, err)

	if _, err := h.deliveries.Assign(ctx, "O1", "DR1", "T3"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("reassign in transit: err = %v, want ErrInvalidTransition", err)
	}
	if n := h.lastNotification(t); n.Severity != domain.SeverityWarning {
		t.Fatalf("rejection severity = %s, want warning", n.Severity)
	}

	// the truck is busy with O1
	if _, err := h.deliveries.Assign(ctx, "O2", "DR1", "T1"); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("assign busy truck: err = %v, want ErrPrecondition", err)
	}
}

func TestStartTaggedTruckBeginsTracking(t *testing.T) {
	tracker := newFakeTracker()
	h := newHarness(t, tracker)
	ctx := context.Background()

	_, err := h.deliveries.Assign(ctx, "O1", "DR1", "T1")
	mustDo(t, err)

	d, err := h.deliveries.Start(ctx, "O1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Status != domain.DeliveryInTransit {
		t.Fatalf("status = %s, want in_transit", d.Status)
	}
	if d.DistanceCoveredKm != 0 || d.TotalDistanceKm != 100 {
		t.Fatalf("distance = %v/%v, want 0/100", d.DistanceCoveredKm, d.TotalDistanceKm)
	}
	if d.DepartedAt == nil || !d.DepartedAt.Equal(baseTime) {
		t.Fatalf("DepartedAt = %v", d.DepartedAt)
	}
	if want := baseTime.Add(2 * time.Hour); d.ExpectedArrival == nil || !d.ExpectedArrival.Equal(want) {
		t.Fatalf("ExpectedArrival = %v, want %v", d.ExpectedArrival, want)
	}

	if len(tracker.started) != 1 {
		t.Fatalf("tracking started %d times, want 1", len(tracker.started))
	}
	call := tracker.started[0]
	if call.truckID != "T1" || call.totalKm != 100 || call.start != domain.DefaultPosition {
		t.Fatalf("tracking call = %+v", call)
	}

	if got := h.orderStatus(t, "O1"); got != domain.OrderInTransit {
		t.Fatalf("order status = %s, want in_transit", got)
	}
	if entry := h.lastActivity(t); entry.Action != "started" {
		t.Fatalf("last activity = %s, want started", entry.Action)
	}

	// a second start is an invalid transition
	if _, err := h.deliveries.Start(ctx, "O1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("second start: err = %v, want ErrInvalidTransition", err)
	}
}

func TestStartBlockedUntilTruckTagged(t *testing.T) {
	tracker := newFakeTracker()
	h := newHarness(t, tracker)
	ctx := context.Background()

	_, err := h.deliveries.Assign(ctx, "O1", "DR1", "T2")
	mustDo(t, err)

	if _, err := h.deliveries.Start(ctx, "O1"); !errors.Is(err, domain.ErrGPSTagRequired) {
		t.Fatalf("start untagged: err = %v, want ErrGPSTagRequired", err)
	}
	d, _ := h.deliveries.Delivery(ctx, "O1")
	if d.Status != domain.DeliveryPending {
		t.Fatalf("status = %s after rejected start, want pending", d.Status)
	}

	truck, err := h.deliveries.TagTruck(ctx, "T2", "GPS-2")
	mustDo(t, err)
	if !truck.GPSTagged {
		t.Fatalf("truck not tagged")
	}
	if entry := h.lastActivity(t); entry.Action != "gps_tagged" || entry.EntityID != "T2" {
		t.Fatalf("activity = %+v", entry)
	}

	d, err = h.deliveries.Start(ctx, "O1")
	mustDo(t, err)
	if !d.GPSTagged || d.GPSDeviceID != "GPS-2" {
		t.Fatalf("delivery gps fields not refreshed: %+v", d)
	}
	if !tracker.IsTracking("T2") {
		t.Fatalf("T2 not tracked after start")
	}
}

func TestStartWithoutGPSSkipsTracking(t *testing.T) {
	tracker := newFakeTracker()
	h := newHarness(t, tracker)
	ctx := context.Background()

	_, err := h.deliveries.Assign(ctx, "O1", "DR1", "T3")
	mustDo(t, err)
	_, err = h.deliveries.Start(ctx, "O1")
	mustDo(t, err)

	if len(tracker.started) != 0 {
		t.Fatalf("non-GPS truck started tracking")
	}
	if _, err := h.deliveries.TagTruck(ctx, "T3", "GPS-3"); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("tag non-capable truck: err = %v, want ErrPrecondition", err)
	}
}

func TestStartWithoutDelivery(t *testing.T) {
	h := newHarness(t, newFakeTracker())

	if _, err := h.deliveries.Start(context.Background(), "O1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if n := h.lastNotification(t); n.Severity != domain.SeverityError {
		t.Fatalf("severity = %s, want error", n.Severity)
	}
}

func TestStartReportsEstimateFailure(t *testing.T) {
	tracker := newFakeTracker()
	h := newHarness(t, tracker)
	ctx := context.Background()
	h.estimator.Default = 0

	_, err := h.deliveries.Assign(ctx, "O1", "DR1", "T1")
	mustDo(t, err)

	if _, err := h.deliveries.Start(ctx, "O1"); err == nil {
		t.Fatalf("expected error without a distance estimate")
	}
	n := h.lastNotification(t)
	if n.Title != "Start failed" || n.Severity != domain.SeverityError {
		t.Fatalf("notification = %+v, want Start failed / error", n)
	}
	d, err := h.deliveries.Delivery(ctx, "O1")
	mustDo(t, err)
	if d.Status != domain.DeliveryPending || len(tracker.started) != 0 {
		t.Fatalf("delivery %s after failed start (tracking calls %d)", d.Status, len(tracker.started))
	}
}

func TestCompleteRequiresInTransit(t *testing.T) {
	tracker := newFakeTracker()
	h := newHarness(t, tracker)
	ctx := context.Background()

	_, err := h.deliveries.Assign(ctx, "O1", "DR1", "T1")
	mustDo(t, err)

	if _, err := h.deliveries.Complete(ctx, "O1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("complete pending: err = %v, want ErrInvalidTransition", err)
	}

	_, err = h.deliveries.Start(ctx, "O1")
	mustDo(t, err)
	d, err := h.deliveries.Complete(ctx, "O1")
	mustDo(t, err)

	if d.Status != domain.DeliveryDelivered || d.DistanceCoveredKm != d.TotalDistanceKm {
		t.Fatalf("delivery = %+v, want delivered with full distance", d)
	}
	if d.ArrivedAt == nil || !d.ArrivedAt.Equal(baseTime) {
		t.Fatalf("ArrivedAt = %v", d.ArrivedAt)
	}
	if tracker.IsTracking("T1") {
		t.Fatalf("tracking not stopped on completion")
	}
	if got := h.orderStatus(t, "O1"); got != domain.OrderDelivered {
		t.Fatalf("order status = %s, want delivered", got)
	}

	if _, err := h.deliveries.Complete(ctx, "O1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("complete twice: err = %v, want ErrInvalidTransition", err)
	}
}

func TestApplyGPSTick(t *testing.T) {
	h := newHarness(t, newFakeTracker())
	ctx := context.Background()

	_, err := h.deliveries.Assign(ctx, "O1", "DR1", "T1")
	mustDo(t, err)
	_, err = h.deliveries.Start(ctx, "O1")
	mustDo(t, err)

	at := baseTime.Add(5 * time.Minute)
	pos := domain.Coordinates{Lat: 6.53, Lon: 3.38}
	mustDo(t, h.deliveries.ApplyGPSTick(ctx, domain.TickEvent{TruckID: "T1", Position: pos, SpeedKmh: 60, At: at}))

	d, _ := h.deliveries.Delivery(ctx, "O1")
	if math.Abs(d.DistanceCoveredKm-0.6) > 1e-9 {
		t.Fatalf("covered = %v, want 0.6", d.DistanceCoveredKm)
	}
	want := at.Add(time.Duration((100 - d.DistanceCoveredKm) / 60 * float64(time.Hour)))
	if !d.ExpectedArrival.Equal(want) {
		t.Fatalf("ETA = %v, want %v", d.ExpectedArrival, want)
	}

	truck, _ := h.fleet.GetTruck(ctx, "T1")
	if truck.Position() != pos || truck.LastSpeedKmh != 60 {
		t.Fatalf("truck position not recorded: %+v", truck)
	}

	for i := 0; i < 50; i++ {
		mustDo(t, h.deliveries.ApplyGPSTick(ctx, domain.TickEvent{TruckID: "T1", Position: pos, SpeedKmh: 10000, At: at}))
		d, _ = h.deliveries.Delivery(ctx, "O1")
		if d.DistanceCoveredKm > d.TotalDistanceKm {
			t.Fatalf("covered %v exceeds total %v", d.DistanceCoveredKm, d.TotalDistanceKm)
		}
	}
	if d.DistanceCoveredKm != 100 {
		t.Fatalf("covered = %v, want clamp at 100", d.DistanceCoveredKm)
	}

	if err := h.deliveries.ApplyGPSTick(ctx, domain.TickEvent{TruckID: "ghost"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown truck: err = %v, want ErrNotFound", err)
	}
}

func TestApplyGPSTickIgnoresDeliveredOrders(t *testing.T) {
	h := newHarness(t, newFakeTracker())
	ctx := context.Background()

	done := h.deliver(t, "O1", "T1")
	mustDo(t, h.deliveries.ApplyGPSTick(ctx, domain.TickEvent{TruckID: "T1", SpeedKmh: 60, At: baseTime}))

	d, _ := h.deliveries.Delivery(ctx, "O1")
	if d.DistanceCoveredKm != done.DistanceCoveredKm || d.Status != domain.DeliveryDelivered {
		t.Fatalf("delivered delivery changed by tick: %+v", d)
	}
}
