package services

import (
	"context"
	"errors"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/ports"
	"log/slog"
	"time"
)

type actorKey struct{}

const systemActor = "system"

// WithActor attaches the acting user recorded in activity entries.
func WithActor(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, actorKey{}, user)
}

func actor(ctx context.Context) string {
	if u, ok := ctx.Value(actorKey{}).(string); ok && u != "" {
		return u
	}
	return systemActor
}

// sideEffects bundles the best-effort outputs shared by the services.
// Failures are logged and never returned to the caller.
type sideEffects struct {
	activity ports.ActivityLog
	notifier ports.Notifier
}

func (s sideEffects) record(ctx context.Context, entityType, entityID, action, details string, now time.Time, meta map[string]string) {
	if s.activity == nil {
		return
	}
	entry := domain.ActivityEntry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
		User:       actor(ctx),
		Timestamp:  now,
		Metadata:   meta,
	}
	if err := s.activity.Append(ctx, entry); err != nil {
		slog.WarnContext(ctx, "activity append failed", "action", action, "entity_id", entityID, "err", err)
	}
}

func (s sideEffects) notify(ctx context.Context, title, message string, severity domain.Severity) {
	if s.notifier == nil {
		return
	}
	n := domain.Notification{Title: title, Message: message, Severity: severity}
	if err := s.notifier.Notify(ctx, n); err != nil {
		slog.WarnContext(ctx, "notification failed", "title", title, "err", err)
	}
}

// reject reports a refused operation to the user and hands back err.
func (s sideEffects) reject(ctx context.Context, title string, err error) error {
	s.notify(ctx, title, err.Error(), rejectionSeverity(err))
	return err
}

func rejectionSeverity(err error) domain.Severity {
	switch {
	case errors.Is(err, domain.ErrPrecondition),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrAlreadyRecorded):
		return domain.SeverityWarning
	default:
		return domain.SeverityError
	}
}
