package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"fuel-delivery-service/internal/adapters/distance"
	"fuel-delivery-service/internal/adapters/gpssim"
	"fuel-delivery-service/internal/adapters/notify"
	"fuel-delivery-service/internal/adapters/repositories"
	"fuel-delivery-service/internal/adapters/store"
	"fuel-delivery-service/internal/api"
	"fuel-delivery-service/internal/config"
	"fuel-delivery-service/internal/platform/db"
	"fuel-delivery-service/internal/ports"
	"fuel-delivery-service/internal/services"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (list store, GPS simulation, notifiers) behind ports and starts the HTTP server.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		fatal("open store", err)
	}
	defer closeStore()

	if err := seedIfEmpty(ctx, listStore, cfg.SeedPath); err != nil {
		fatal("seed", err)
	}

	var notifier ports.Notifier = notify.NewLogNotifier(nil)
	var positions ports.PositionPublisher = notify.NewLogNotifier(nil)
	if strings.TrimSpace(cfg.AMQPURL) != "" {
		rabbit, err := notify.DialRabbit(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			fatal("connect rabbitmq", err)
		}
		defer rabbit.Close()
		notifier = notify.Multi{notifier, rabbit}
		positions = rabbit
		slog.Info("publishing events to rabbitmq", "exchange", cfg.AMQPExchange)
	}

	engine := gpssim.NewEngine(gpssim.WithInterval(cfg.GPSTickInterval))
	defer engine.Close()

	orders := repositories.NewOrderRepository(listStore)
	deliveryRepo := repositories.NewDeliveryRepository(listStore)
	activity := repositories.NewActivityLog(listStore)

	deliveries := services.NewDeliveryService(services.DeliveryDeps{
		Orders:     orders,
		Deliveries: deliveryRepo,
		Fleet:      repositories.NewFleetRepository(listStore),
		Activity:   activity,
		Notifier:   notifier,
		Estimator:  distance.NewRandomEstimator(nil),
		Tracker:    engine,
		Positions:  positions,
	})
	offloading := services.NewOffloadingService(services.OffloadingDeps{
		Orders:      orders,
		Deliveries:  deliveryRepo,
		Tanks:       repositories.NewTankRepository(listStore),
		Offloadings: repositories.NewOffloadingRepository(listStore),
		Activity:    activity,
		Notifier:    notifier,
	})

	// single consumer applies every GPS tick
	engine.SetHandler(deliveries.HandleTick)
	go engine.Run(ctx)

	router := api.NewRouter(api.Deps{
		Deliveries: deliveries,
		Offloading: offloading,
		Tracking:   engine,
		Activity:   activity,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "err", err)
		}
	}()

	slog.Info("server listening", "addr", srv.Addr, "store", cfg.StoreBackend, "gps_interval", cfg.GPSTickInterval)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal("serve", err)
	}
	slog.Info("server stopped")
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}

// openStore selects the list store backend from STORE_BACKEND.
func openStore(ctx context.Context, cfg config.Config) (ports.ListStore, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemoryStore(), func() {}, nil

	case "sqlite":
		conn, err := db.OpenSqlite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return store.NewSqliteListStore(conn), closer(conn), nil

	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, nil, errors.New("DATABASE_URL is required for the postgres backend")
		}
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return store.NewSQLListStore(conn), closer(conn), nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		return store.NewRedisListStore(client, "fuel:"), func() { client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q (memory, sqlite, postgres, redis)", cfg.StoreBackend)
	}
}

func closer(conn *sql.DB) func() {
	return func() {
		if err := conn.Close(); err != nil {
			slog.Warn("close database", "err", err)
		}
	}
}

// seedIfEmpty loads demo data on first start so restarts keep live state.
func seedIfEmpty(ctx context.Context, s ports.ListStore, seedPath string) error {
	existing, err := s.Get(ctx, repositories.KeyTrucks)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		slog.Warn("seed file not found, starting empty", "path", seedPath)
		return nil
	}
	return repositories.SeedFromJSON(ctx, s, seedPath)
}
