package services

import (
	"context"
	"errors"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/ports"
	"math"
	"testing"
	"time"
)

// hookedOrders runs onGet once, before the first GetOrder call.
type hookedOrders struct {
	ports.OrderRepository
	onGet func()
}

func (r *hookedOrders) GetOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	if hook := r.onGet; hook != nil {
		r.onGet = nil
		hook()
	}
	return r.OrderRepository.GetOrder(ctx, id)
}

func TestRecordOffloadingApproved(t *testing.T) {
	h := newHarness(t, newFakeTracker())
	ctx := context.Background()
	d := h.deliver(t, "O1", "T1")

	rec, err := h.offloading.Record(ctx, RecordOffloadingRequest{
		OrderID:         "O1",
		TankID:          "K1",
		LoadedVolume:    1000,
		DeliveredVolume: 980,
		MeasuredBy:      "Amaka",
		MeasuredByRole:  "station_manager",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.DeliveryID != d.ID || rec.Status != domain.OffloadingApproved || rec.DiscrepancyFlagged {
		t.Fatalf("record = %+v, want approved for %s", rec, d.ID)
	}
	if math.Abs(rec.DiscrepancyPercent-2.0) > 1e-9 {
		t.Fatalf("discrepancy = %v, want 2.0", rec.DiscrepancyPercent)
	}

	tank, _ := h.tanks.GetTank(ctx, "K1")
	if tank.CurrentLitres != 1980 {
		t.Fatalf("tank level = %v, want 1980", tank.CurrentLitres)
	}
	if got := h.orderStatus(t, "O1"); got != domain.OrderOffloaded {
		t.Fatalf("order status = %s, want offloaded", got)
	}
	if entry := h.lastActivity(t); entry.Action != "offloaded" {
		t.Fatalf("activity = %s, want offloaded", entry.Action)
	}

	got, err := h.offloading.Get(ctx, d.ID)
	mustDo(t, err)
	if got.ID != rec.ID {
		t.Fatalf("Get returned %s, want %s", got.ID, rec.ID)
	}
	byOrder, err := h.offloading.ForOrder(ctx, "O1")
	mustDo(t, err)
	if byOrder.ID != rec.ID {
		t.Fatalf("ForOrder returned %s, want %s", byOrder.ID, rec.ID)
	}

	_, err = h.offloading.Record(ctx, RecordOffloadingRequest{OrderID: "O1", TankID: "K1", LoadedVolume: 1000, DeliveredVolume: 500})
	if !errors.Is(err, domain.ErrAlreadyRecorded) {
		t.Fatalf("second record: err = %v, want ErrAlreadyRecorded", err)
	}
	tank, _ = h.tanks.GetTank(ctx, "K1")
	if tank.CurrentLitres != 1980 {
		t.Fatalf("tank level changed by rejected record: %v", tank.CurrentLitres)
	}
}

func TestRecordOffloadingFlagsDiscrepancy(t *testing.T) {
	h := newHarness(t, newFakeTracker())
	ctx := context.Background()
	h.deliver(t, "O1", "T1")

	rec, err := h.offloading.Record(ctx, RecordOffloadingRequest{OrderID: "O1", TankID: "K1", LoadedVolume: 1000, DeliveredVolume: 900})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.DiscrepancyFlagged || rec.Status != domain.OffloadingUnderInvestigation {
		t.Fatalf("record = %+v, want flagged under investigation", rec)
	}
	if math.Abs(rec.DiscrepancyPercent-10) > 1e-9 {
		t.Fatalf("discrepancy = %v, want 10", rec.DiscrepancyPercent)
	}

	n := h.lastNotification(t)
	if n.Severity != domain.SeverityWarning || n.Title != "Fraud alert" {
		t.Fatalf("notification = %+v, want warning fraud alert", n)
	}
	if entry := h.lastActivity(t); entry.Action != "discrepancy_flagged" {
		t.Fatalf("activity = %s, want discrepancy_flagged", entry.Action)
	}
}

func TestRecordOffloadingRejections(t *testing.T) {
	h := newHarness(t, newFakeTracker())
	ctx := context.Background()

	// no delivery yet
	_, err := h.offloading.Record(ctx, RecordOffloadingRequest{OrderID: "O1", TankID: "K1", LoadedVolume: 1000, DeliveredVolume: 990})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("no delivery: err = %v, want ErrNotFound", err)
	}

	// in transit is not enough
	_, err = h.deliveries.Assign(ctx, "O1", "DR1", "T1")
	mustDo(t, err)
	_, err = h.deliveries.Start(ctx, "O1")
	mustDo(t, err)
	_, err = h.offloading.Record(ctx, RecordOffloadingRequest{OrderID: "O1", TankID: "K1", LoadedVolume: 1000, DeliveredVolume: 990})
	if !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("in transit: err = %v, want ErrPrecondition", err)
	}
	_, err = h.deliveries.Complete(ctx, "O1")
	mustDo(t, err)

	tests := []struct {
		name string
		req  RecordOffloadingRequest
		want error
	}{
		{name: "zero loaded", req: RecordOffloadingRequest{TankID: "K1", LoadedVolume: 0, DeliveredVolume: 10}, want: domain.ErrInvalidQuantity},
		{name: "negative delivered", req: RecordOffloadingRequest{TankID: "K1", LoadedVolume: 1000, DeliveredVolume: -1}, want: domain.ErrInvalidQuantity},
		{name: "unknown tank", req: RecordOffloadingRequest{TankID: "nope", LoadedVolume: 1000, DeliveredVolume: 990}, want: domain.ErrNotFound},
		{name: "wrong fuel", req: RecordOffloadingRequest{TankID: "K2", LoadedVolume: 1000, DeliveredVolume: 990}, want: domain.ErrPrecondition},
		{name: "overflow", req: RecordOffloadingRequest{TankID: "K1", LoadedVolume: 4500, DeliveredVolume: 4500}, want: domain.ErrTankOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.OrderID = "O1"
			if _, err := h.offloading.Record(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if got := h.orderStatus(t, "O1"); got != domain.OrderDelivered {
		t.Fatalf("order status = %s after rejections, want delivered", got)
	}
}

func TestOffloadingDuringCompletionKeepsOrderOffloaded(t *testing.T) {
	h := newHarness(t, newFakeTracker())
	ctx := context.Background()

	_, err := h.deliveries.Assign(ctx, "O1", "DR1", "T1")
	mustDo(t, err)
	_, err = h.deliveries.Start(ctx, "O1")
	mustDo(t, err)

	req := RecordOffloadingRequest{OrderID: "O1", TankID: "K1", LoadedVolume: 1000, DeliveredVolume: 990}
	var raced error
	orders := &hookedOrders{OrderRepository: h.orders, onGet: func() {
		_, raced = h.offloading.Record(ctx, req)
	}}
	deliveries := NewDeliveryService(DeliveryDeps{
		Orders:     orders,
		Deliveries: h.deliveryRepo,
		Fleet:      h.fleet,
		Estimator:  h.estimator,
		Now:        func() time.Time { return baseTime },
	})

	_, err = deliveries.Complete(ctx, "O1")
	mustDo(t, err)
	if !errors.Is(raced, domain.ErrPrecondition) {
		t.Fatalf("offloading inside completion: err = %v, want ErrPrecondition", raced)
	}
	if got := h.orderStatus(t, "O1"); got != domain.OrderDelivered {
		t.Fatalf("order status after completion = %s, want delivered", got)
	}

	_, err = h.offloading.Record(ctx, req)
	mustDo(t, err)
	if got := h.orderStatus(t, "O1"); got != domain.OrderOffloaded {
		t.Fatalf("order status after offload = %s, want offloaded", got)
	}
}
