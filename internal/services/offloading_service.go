package services

import (
	"context"
	"errors"
	"fmt"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/platform/obs"
	"fuel-delivery-service/internal/ports"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RecordOffloadingRequest struct {
	OrderID         string
	TankID          string
	LoadedVolume    float64
	DeliveredVolume float64
	MeasuredBy      string
	MeasuredByRole  string
}

type OffloadingDeps struct {
	Orders      ports.OrderRepository
	Deliveries  ports.DeliveryRepository
	Tanks       ports.TankRepository
	Offloadings ports.OffloadingRepository
	Activity    ports.ActivityLog
	Notifier    ports.Notifier
	Now         func() time.Time
	NewID       func() string
}

// OffloadingService records the measured transfer of a delivered load into a tank.
type OffloadingService struct {
	mu sync.Mutex

	orders      ports.OrderRepository
	deliveries  ports.DeliveryRepository
	tanks       ports.TankRepository
	offloadings ports.OffloadingRepository
	effects     sideEffects

	now   func() time.Time
	newID func() string
}

func NewOffloadingService(deps OffloadingDeps) *OffloadingService {
	s := &OffloadingService{
		orders:      deps.Orders,
		deliveries:  deps.Deliveries,
		tanks:       deps.Tanks,
		offloadings: deps.Offloadings,
		effects:     sideEffects{activity: deps.Activity, notifier: deps.Notifier},
		now:         deps.Now,
		newID:       deps.NewID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

func (s *OffloadingService) Record(ctx context.Context, req RecordOffloadingRequest) (_ *domain.OffloadingRecord, err error) {
	defer obs.Time(ctx, "offloading.Record")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	const title = "Offloading rejected"

	d, err := s.deliveries.CurrentDelivery(ctx, req.OrderID)
	if err != nil {
		return nil, s.effects.reject(ctx, title, fmt.Errorf("record offloading: %w", err))
	}
	if d.Status != domain.DeliveryDelivered {
		return nil, s.effects.reject(ctx, title,
			fmt.Errorf("record offloading for delivery %s: %w: delivery is %s", d.ID, domain.ErrPrecondition, d.Status))
	}

	_, err = s.offloadings.GetOffloading(ctx, d.ID)
	switch {
	case err == nil:
		return nil, s.effects.reject(ctx, title,
			fmt.Errorf("record offloading for delivery %s: %w", d.ID, domain.ErrAlreadyRecorded))
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("record offloading: %w", err)
	}

	disc, err := domain.ComputeDiscrepancy(req.LoadedVolume, req.DeliveredVolume)
	if err != nil {
		return nil, s.effects.reject(ctx, title, fmt.Errorf("record offloading: %w", err))
	}

	order, err := s.orders.GetOrder(ctx, d.OrderID)
	if err != nil {
		return nil, fmt.Errorf("record offloading: %w", err)
	}
	tank, err := s.tanks.GetTank(ctx, req.TankID)
	if err != nil {
		return nil, s.effects.reject(ctx, title, fmt.Errorf("record offloading: %w", err))
	}
	if tank.FuelType != "" && order.FuelType != "" && !strings.EqualFold(tank.FuelType, order.FuelType) {
		return nil, s.effects.reject(ctx, title,
			fmt.Errorf("record offloading: %w: tank %s holds %s, order is %s", domain.ErrPrecondition, tank.ID, tank.FuelType, order.FuelType))
	}
	if req.DeliveredVolume > tank.Free() {
		return nil, s.effects.reject(ctx, title,
			fmt.Errorf("record offloading into tank %s: %w: %.0f L delivered, %.0f L free", tank.ID, domain.ErrTankOverflow, req.DeliveredVolume, tank.Free()))
	}

	now := s.now()
	rec := &domain.OffloadingRecord{
		ID:                 s.newID(),
		DeliveryID:         d.ID,
		OrderID:            d.OrderID,
		TankID:             tank.ID,
		LoadedVolume:       req.LoadedVolume,
		DeliveredVolume:    req.DeliveredVolume,
		MeasuredBy:         req.MeasuredBy,
		MeasuredByRole:     req.MeasuredByRole,
		DiscrepancyPercent: disc.Percent,
		DiscrepancyFlagged: disc.Flagged,
		Status:             disc.Status(),
		RecordedAt:         now,
	}
	if err := s.offloadings.CreateOffloading(ctx, rec); err != nil {
		return nil, s.effects.reject(ctx, title, fmt.Errorf("record offloading: %w", err))
	}

	tank.CurrentLitres += req.DeliveredVolume
	if err := s.tanks.SaveTank(ctx, tank); err != nil {
		return nil, fmt.Errorf("record offloading: %w", err)
	}
	order.Status = domain.OrderOffloaded
	if err := s.orders.SaveOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("record offloading: %w", err)
	}

	meta := map[string]string{
		"order_id":            order.ID,
		"tank_id":             tank.ID,
		"discrepancy_percent": fmt.Sprintf("%.2f", disc.Percent),
	}
	if disc.Flagged {
		s.effects.record(ctx, "offloading", rec.ID, "discrepancy_flagged",
			fmt.Sprintf("Loaded %.0f L, delivered %.0f L (%.2f%%)", req.LoadedVolume, req.DeliveredVolume, disc.Percent), now, meta)
		s.effects.notify(ctx, "Fraud alert",
			fmt.Sprintf("Order %s shows a %.2f%% volume discrepancy and is under investigation", orderLabel(order), disc.Percent),
			domain.SeverityWarning)
	} else {
		s.effects.record(ctx, "offloading", rec.ID, "offloaded",
			fmt.Sprintf("%.0f L offloaded into %s", req.DeliveredVolume, tank.Name), now, meta)
		s.effects.notify(ctx, "Offloading approved",
			fmt.Sprintf("Order %s offloaded into %s", orderLabel(order), tank.Name), domain.SeveritySuccess)
	}

	return rec, nil
}

func (s *OffloadingService) Get(ctx context.Context, deliveryID string) (*domain.OffloadingRecord, error) {
	rec, err := s.offloadings.GetOffloading(ctx, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("get offloading: %w", err)
	}
	return rec, nil
}

// ForOrder returns the offloading record of the order's current delivery.
func (s *OffloadingService) ForOrder(ctx context.Context, orderID string) (*domain.OffloadingRecord, error) {
	d, err := s.deliveries.CurrentDelivery(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get offloading: %w", err)
	}
	return s.Get(ctx, d.ID)
}
