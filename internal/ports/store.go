package ports

import (
	"context"
	"encoding/json"
)

// Port: key-value persistence with list-get/list-set semantics.
// A missing key reads as an empty list. Writes replace the whole list.
type ListStore interface {
	Get(ctx context.Context, key string) ([]json.RawMessage, error)
	Set(ctx context.Context, key string, items []json.RawMessage) error
}
