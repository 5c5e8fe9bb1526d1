package ports

import (
	"context"
	"fuel-delivery-service/internal/domain"
)

// Fire-and-forget sink for user-facing messages.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// Outbound feed of truck positions for downstream consumers.
type PositionPublisher interface {
	PublishPosition(ctx context.Context, tick domain.TickEvent) error
}
