package gpssim

import (
	"context"
	"fmt"
	"fuel-delivery-service/internal/domain"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

const DefaultInterval = 5 * time.Second

// Ticker is the subset of *time.Ticker the engine relies on.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker { return timeTicker{t: time.NewTicker(d)} }

// Handler receives every tick event, including the final one at journey completion.
type Handler func(ctx context.Context, ev domain.TickEvent)

type simulation struct {
	info   domain.TrackedTruck
	cancel context.CancelFunc
	done   chan struct{}
}

// Engine simulates GPS feeds for trucks in transit.
//
// Each tracked truck owns one goroutine and one ticker. A tick is fully applied
// and its event handed to the consumer before the goroutine waits for the next
// tick, so distance covered only ever grows within a journey.
//
// Simulations live until stopped, completed, or the engine is closed.
type Engine struct {
	mu     sync.Mutex
	trucks map[string]*simulation
	rnd    *rand.Rand

	interval  time.Duration
	newTicker func(time.Duration) Ticker
	now       func() time.Time
	reference domain.Coordinates
	minStepKm float64

	events chan domain.TickEvent

	handlerMu sync.RWMutex
	handler   Handler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Engine)

func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

func WithRand(r *rand.Rand) Option { return func(e *Engine) { e.rnd = r } }

func WithTicker(f func(time.Duration) Ticker) Option { return func(e *Engine) { e.newTicker = f } }

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithReference sets the point default destinations are scattered around.
func WithReference(c domain.Coordinates) Option { return func(e *Engine) { e.reference = c } }

// WithMinStep fixes the minimum distance credited per tick. Zero derives it from
// the simulated speed over one interval.
func WithMinStep(km float64) Option { return func(e *Engine) { e.minStepKm = km } }

func WithEventBuffer(n int) Option {
	return func(e *Engine) { e.events = make(chan domain.TickEvent, n) }
}

func NewEngine(opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		trucks:    make(map[string]*simulation),
		interval:  DefaultInterval,
		newTicker: newTimeTicker,
		now:       time.Now,
		reference: domain.DefaultPosition,
		events:    make(chan domain.TickEvent),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rnd == nil {
		e.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e
}

// Events exposes the tick stream. Consume it directly or call Run.
func (e *Engine) Events() <-chan domain.TickEvent { return e.events }

// SetHandler registers the single tick handler used by Run, replacing any previous one.
func (e *Engine) SetHandler(h Handler) {
	e.handlerMu.Lock()
	e.handler = h
	e.handlerMu.Unlock()
}

// Run dispatches tick events to the registered handler until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-e.events:
			e.handlerMu.RLock()
			h := e.handler
			e.handlerMu.RUnlock()

			if h == nil {
				slog.Debug("gps tick dropped, no handler", "truck_id", ev.TruckID)
				continue
			}
			h(ctx, ev)
		}
	}
}

func (e *Engine) StartTracking(
	ctx context.Context,
	truckID string,
	start domain.Coordinates,
	totalKm float64,
	dest *domain.Coordinates,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if truckID == "" {
		return fmt.Errorf("start tracking: truck id must not be empty")
	}
	if totalKm <= 0 || math.IsNaN(totalKm) || math.IsInf(totalKm, 0) {
		return fmt.Errorf("start tracking truck %s: %w: total distance %v", truckID, domain.ErrInvalidDistance, totalKm)
	}
	if e.ctx.Err() != nil {
		return fmt.Errorf("start tracking truck %s: engine closed", truckID)
	}

	// Last writer wins: the previous journey must be fully stopped first.
	e.StopTracking(truckID)

	e.mu.Lock()
	if prev, ok := e.trucks[truckID]; ok && prev.info.Active {
		// a concurrent start slipped in; its goroutine exits on cancel
		prev.info.Active = false
		prev.cancel()
	}

	destination := e.defaultDestination()
	if dest != nil {
		destination = *dest
	}

	simCtx, cancel := context.WithCancel(e.ctx)
	sim := &simulation{
		info: domain.TrackedTruck{
			TruckID:         truckID,
			StartedAt:       e.now(),
			TotalDistanceKm: totalKm,
			Position:        start,
			Destination:     destination,
			Active:          true,
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	e.trucks[truckID] = sim
	ticker := e.newTicker(e.interval)
	e.mu.Unlock()

	e.wg.Add(1)
	go e.loop(simCtx, sim, ticker)

	slog.Info("gps tracking started",
		"truck_id", truckID,
		"total_km", totalKm,
		"dest_lat", destination.Lat,
		"dest_lon", destination.Lon,
	)
	return nil
}

// StopTracking cancels the truck's simulation and waits for its goroutine to exit.
func (e *Engine) StopTracking(truckID string) {
	e.mu.Lock()
	sim, ok := e.trucks[truckID]
	if !ok {
		e.mu.Unlock()
		return
	}
	wasActive := sim.info.Active
	sim.info.Active = false
	e.mu.Unlock()

	sim.cancel()
	<-sim.done

	if wasActive {
		slog.Info("gps tracking stopped", "truck_id", truckID)
	}
}

func (e *Engine) IsTracking(truckID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	sim, ok := e.trucks[truckID]
	return ok && sim.info.Active
}

// TrackingInfo returns the latest snapshot for the truck, including stopped journeys.
func (e *Engine) TrackingInfo(truckID string) (domain.TrackedTruck, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sim, ok := e.trucks[truckID]
	if !ok {
		return domain.TrackedTruck{}, false
	}
	return sim.info, true
}

// TrackedTrucks lists ids of trucks with an active simulation, sorted.
func (e *Engine) TrackedTrucks() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(e.trucks))
	for id, sim := range e.trucks {
		if sim.info.Active {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Close stops every simulation. The engine cannot be restarted.
func (e *Engine) Close() {
	e.mu.Lock()
	for _, sim := range e.trucks {
		sim.info.Active = false
	}
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}

func (e *Engine) loop(ctx context.Context, sim *simulation, ticker Ticker) {
	defer e.wg.Done()
	defer close(sim.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			ev, finished, ok := e.step(sim)
			if !ok {
				return
			}

			select {
			case e.events <- ev:
			case <-ctx.Done():
				return
			}

			if finished {
				slog.Info("gps journey completed", "truck_id", ev.TruckID, "km", ev.DistanceCoveredKm)
				return
			}
		}
	}
}

// step advances the simulation by one tick. ok is false when the simulation
// was stopped or replaced in the meantime.
func (e *Engine) step(sim *simulation) (ev domain.TickEvent, finished bool, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	info := &sim.info
	if e.trucks[info.TruckID] != sim || !info.Active {
		return domain.TickEvent{}, false, false
	}

	progress := info.Progress()
	if progress >= 1 {
		info.Position = info.Destination
		info.SpeedKmh = 0
		info.DistanceCoveredKm = info.TotalDistanceKm
		info.Active = false
		return e.event(info, true), true, true
	}

	// Ease in: later ticks close a larger share of the remaining gap.
	frac := 0.05 + 0.1*progress
	prev := info.Position
	next := domain.Coordinates{
		Lat: prev.Lat + (info.Destination.Lat-prev.Lat)*frac,
		Lon: prev.Lon + (info.Destination.Lon-prev.Lon)*frac,
	}

	speed := 40 + e.rnd.Float64()*30 - 20*progress

	stepKm := prev.PlanarDistanceKm(next)
	floor := e.minStepKm
	if floor <= 0 {
		floor = speed * e.interval.Hours()
	}
	stepKm = math.Max(stepKm, floor)

	info.DistanceCoveredKm = math.Min(info.DistanceCoveredKm+stepKm, info.TotalDistanceKm)
	info.Position = next
	info.SpeedKmh = speed

	return e.event(info, false), false, true
}

func (e *Engine) event(info *domain.TrackedTruck, completed bool) domain.TickEvent {
	return domain.TickEvent{
		TruckID:           info.TruckID,
		Position:          info.Position,
		SpeedKmh:          info.SpeedKmh,
		DistanceCoveredKm: info.DistanceCoveredKm,
		TotalDistanceKm:   info.TotalDistanceKm,
		Completed:         completed,
		At:                e.now(),
	}
}

// defaultDestination scatters a destination within ±0.05° of the reference point.
// Caller holds e.mu.
func (e *Engine) defaultDestination() domain.Coordinates {
	return domain.Coordinates{
		Lat: e.reference.Lat + (e.rnd.Float64()-0.5)*0.1,
		Lon: e.reference.Lon + (e.rnd.Float64()-0.5)*0.1,
	}
}
