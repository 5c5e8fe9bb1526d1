package repositories

import (
	"context"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/ports"
	"sync"
)

// MaxActivityEntries bounds the stored audit trail; the oldest entries drop first.
const MaxActivityEntries = 1000

type ActivityLog struct {
	mu      sync.Mutex
	entries collection[domain.ActivityEntry]
	limit   int
}

func NewActivityLog(store ports.ListStore) *ActivityLog {
	return &ActivityLog{
		entries: collection[domain.ActivityEntry]{
			store: store,
			key:   KeyActivity,
			id:    func(e *domain.ActivityEntry) string { return e.EntityType + ":" + e.EntityID },
		},
		limit: MaxActivityEntries,
	}
}

func (l *ActivityLog) Append(ctx context.Context, entry domain.ActivityEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := l.entries.load(ctx)
	if err != nil {
		return err
	}
	items = append(items, &entry)
	if len(items) > l.limit {
		items = items[len(items)-l.limit:]
	}
	return l.entries.save(ctx, items)
}

// List returns entries oldest first.
func (l *ActivityLog) List(ctx context.Context) ([]domain.ActivityEntry, error) {
	items, err := l.entries.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ActivityEntry, 0, len(items))
	for _, e := range items {
		out = append(out, *e)
	}
	return out, nil
}
