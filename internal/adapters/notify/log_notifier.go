package notify

import (
	"context"
	"errors"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/ports"
	"log/slog"
	"sync"
)

// LogNotifier writes notifications and position reports to the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{Logger: logger}
}

func (l *LogNotifier) Notify(ctx context.Context, n domain.Notification) error {
	level := slog.LevelInfo
	switch n.Severity {
	case domain.SeverityWarning:
		level = slog.LevelWarn
	case domain.SeverityError:
		level = slog.LevelError
	}
	l.Logger.Log(ctx, level, n.Title, "message", n.Message, "severity", n.Severity)
	return nil
}

func (l *LogNotifier) PublishPosition(ctx context.Context, ev domain.TickEvent) error {
	l.Logger.DebugContext(ctx, "gps position",
		"truck_id", ev.TruckID,
		"lat", ev.Position.Lat,
		"lon", ev.Position.Lon,
		"speed_kmh", ev.SpeedKmh,
		"covered_km", ev.DistanceCoveredKm,
	)
	return nil
}

// Multi fans a notification out to every notifier, joining their errors.
type Multi []ports.Notifier

func (m Multi) Notify(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps notifications in memory. Used by tests.
type Recorder struct {
	mu    sync.Mutex
	sent  []domain.Notification
	ticks []domain.TickEvent
}

func (r *Recorder) Notify(_ context.Context, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *Recorder) PublishPosition(_ context.Context, ev domain.TickEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, ev)
	return nil
}

func (r *Recorder) Notifications() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.sent...)
}

func (r *Recorder) Positions() []domain.TickEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TickEvent(nil), r.ticks...)
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (domain.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return domain.Notification{}, false
	}
	return r.sent[len(r.sent)-1], true
}
