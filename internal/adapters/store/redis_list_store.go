package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fuel-delivery-service/internal/platform/obs"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisListStore keeps each list as one JSON string value under Prefix+key.
type RedisListStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisListStore(client *redis.Client, prefix string) *RedisListStore {
	return &RedisListStore{Client: client, Prefix: prefix}
}

func (r *RedisListStore) Get(ctx context.Context, key string) (_ []json.RawMessage, err error) {
	defer obs.Time(ctx, "store.redis.Get")(&err)

	if r.Client == nil {
		return nil, errors.New("redis list store: client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("get list: key must not be empty")
	}

	data, err := r.Client.Get(ctx, r.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list %q: redis get: %w", key, err)
	}

	items, err := decodeList(data)
	if err != nil {
		return nil, fmt.Errorf("get list %q: %w", key, err)
	}
	return items, nil
}

func (r *RedisListStore) Set(ctx context.Context, key string, items []json.RawMessage) (err error) {
	defer obs.Time(ctx, "store.redis.Set")(&err)

	if r.Client == nil {
		return errors.New("redis list store: client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("set list: key must not be empty")
	}

	data, err := encodeList(items)
	if err != nil {
		return fmt.Errorf("set list %q: %w", key, err)
	}

	if err := r.Client.Set(ctx, r.Prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("set list %q: redis set: %w", key, err)
	}
	return nil
}
