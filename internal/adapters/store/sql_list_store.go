package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"fuel-delivery-service/internal/platform/obs"
	"strings"
)

// SQLListStore is a Postgres-backed list store (pgx stdlib driver).
type SQLListStore struct {
	DB *sql.DB
}

func NewSQLListStore(db *sql.DB) *SQLListStore {
	return &SQLListStore{DB: db}
}

func (s *SQLListStore) Get(ctx context.Context, key string) (_ []json.RawMessage, err error) {
	defer obs.Time(ctx, "store.sql.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sql list store: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return nil, errors.New("get list: key must not be empty")
	}

	q := `
	SELECT items
    FROM kv_lists
    WHERE list_key = $1;
	`

	var raw string
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list %q: query kv_lists table: %w", key, err)
	}

	items, err := decodeList([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("get list %q: %w", key, err)
	}
	return items, nil
}

func (s *SQLListStore) Set(ctx context.Context, key string, items []json.RawMessage) (err error) {
	defer obs.Time(ctx, "store.sql.Set")(&err)

	if s.DB == nil {
		return errors.New("sql list store: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("set list: key must not be empty")
	}

	data, err := encodeList(items)
	if err != nil {
		return fmt.Errorf("set list %q: %w", key, err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set list %q: db begin: %w", key, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO kv_lists (list_key, items, updated_at)
    VALUES ($1, $2, CURRENT_TIMESTAMP)
	ON CONFLICT (list_key) DO UPDATE
	SET items = EXCLUDED.items,
		updated_at = EXCLUDED.updated_at;
	`, key, string(data)); err != nil {
		return fmt.Errorf("set list %q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set list %q commit: %w", key, err)
	}

	return nil
}
