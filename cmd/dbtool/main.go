package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"fuel-delivery-service/internal/adapters/repositories"
	"fuel-delivery-service/internal/adapters/store"
	"fuel-delivery-service/internal/config"
	"fuel-delivery-service/internal/platform/db"
	"fuel-delivery-service/internal/ports"
	"log/slog"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

// dbtool prepares a persistent store: schema for SQL backends, then seed data.
func main() {
	if err := run(context.Background(), config.Load()); err != nil {
		slog.Error("dbtool failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	var listStore ports.ListStore
	switch cfg.StoreBackend {
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required")
		}
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer conn.Close()
		if err := initSchema(conn); err != nil {
			return err
		}
		listStore = store.NewSQLListStore(conn)

	case "sqlite":
		conn, err := db.OpenSqlite(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		defer conn.Close()
		if err := initSchema(conn); err != nil {
			return err
		}
		listStore = store.NewSqliteListStore(conn)

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		listStore = store.NewRedisListStore(client, "fuel:")

	default:
		return fmt.Errorf("STORE_BACKEND must be postgres, sqlite, or redis, got %q", cfg.StoreBackend)
	}

	slog.Info("seeding store", "backend", cfg.StoreBackend, "path", cfg.SeedPath)
	if err := repositories.SeedFromJSON(ctx, listStore, cfg.SeedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	slog.Info("seeding complete")
	return nil
}

func initSchema(conn *sql.DB) error {
	slog.Info("initializing database schema")
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	slog.Info("schema ready")
	return nil
}
