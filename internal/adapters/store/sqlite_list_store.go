package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SQLite backed list store. Each key maps to one row holding the JSON array.
type SqliteListStore struct {
	DB *sql.DB
}

func NewSqliteListStore(db *sql.DB) *SqliteListStore {
	return &SqliteListStore{DB: db}
}

func (s *SqliteListStore) Get(ctx context.Context, key string) ([]json.RawMessage, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite list store: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return nil, errors.New("get list: key must not be empty")
	}

	q := `
	SELECT items
    FROM kv_lists
    WHERE list_key = ?;
	`

	var raw string
	err := s.DB.QueryRowContext(ctx, q, key).Scan(&raw)
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

func (s *SqliteListStore) Set(ctx context.Context, key string, items []json.RawMessage) error {
	if s.DB == nil {
		return errors.New("sqlite list store: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("set list: key must not be empty")
	}

	data, err := encodeList(items)
	if err != nil {
		return fmt.Errorf("set list %q: %w", key, err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO kv_lists (
        list_key,
        items,
        updated_at
    )
    VALUES (?, ?, CURRENT_TIMESTAMP);
	`, key, string(data))
	if err != nil {
		return fmt.Errorf("set list %q: %w", key, err)
	}

	return nil
}
